package agent

import (
	"sync/atomic"
	"time"
)

// HealthStatus is a lock-free snapshot of the agent's liveness markers,
// exposed on the /healthz endpoint.
type HealthStatus struct {
	grpcServing      atomic.Bool
	lastSampleAtUnix atomic.Int64
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{}
}

func (h *HealthStatus) SetGRPCServing(ok bool) {
	h.grpcServing.Store(ok)
}

func (h *HealthStatus) MarkSample(ts time.Time) {
	h.lastSampleAtUnix.Store(ts.UnixNano())
}

func (h *HealthStatus) Snapshot() map[string]any {
	out := map[string]any{
		"grpc_serving": h.grpcServing.Load(),
	}
	if v := h.lastSampleAtUnix.Load(); v > 0 {
		out["last_sample_at"] = time.Unix(0, v).UTC()
	}
	return out
}
