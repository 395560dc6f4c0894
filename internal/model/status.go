package model

// StatusCode is the two-state result code every service operation returns.
type StatusCode string

const (
	StatusSuccess StatusCode = "SUCCESS"
	StatusFailure StatusCode = "FAILURE"
)

// Status pairs a result code with an optional human-readable message.
// Failures never propagate as faults across the service boundary; they are
// always folded into a Status.
type Status struct {
	Code         StatusCode `json:"code"`
	DebugMessage string     `json:"debug_message,omitempty"`
}

func OK() Status {
	return Status{Code: StatusSuccess}
}

func Failure(msg string) Status {
	return Status{Code: StatusFailure, DebugMessage: msg}
}
