package server

import (
	"thermal-agent/internal/model"
)

// Wire frames for the thermal service. The transport is a thin shell: each
// frame pairs the operation's status with its possibly-empty result list.

type Empty struct{}

type FilterRequest struct {
	FilterByType bool             `json:"filter_by_type"`
	Type         model.SensorType `json:"type"`
}

type TemperaturesResponse struct {
	Status       model.Status        `json:"status"`
	Temperatures []model.Temperature `json:"temperatures"`
}

type CurrentTemperaturesResponse struct {
	Status       model.Status               `json:"status"`
	Temperatures []model.CurrentTemperature `json:"temperatures"`
}

type ThresholdsResponse struct {
	Status     model.Status                 `json:"status"`
	Thresholds []model.TemperatureThreshold `json:"thresholds"`
}

type CPUUsagesResponse struct {
	Status model.Status     `json:"status"`
	Usages []model.CPUUsage `json:"usages"`
}

type CoolingDevicesResponse struct {
	Status  model.Status          `json:"status"`
	Devices []model.CoolingDevice `json:"devices"`
}

type EventFrame struct {
	Event model.ThrottlingEvent `json:"event"`
}
