package model

// CPUUsage is one per-core counter snapshot. Active and Total are cumulative
// jiffies since boot; Total always includes Active.
type CPUUsage struct {
	Name     string `json:"name"`
	Active   uint64 `json:"active"`
	Total    uint64 `json:"total"`
	IsOnline bool   `json:"is_online"`
}

// CoolingDevice describes a cooling actuator. The supported hardware has
// none, so lists of these are always empty, but the type is part of the
// service surface.
type CoolingDevice struct {
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	CurrentValue float64 `json:"current_value"`
}
