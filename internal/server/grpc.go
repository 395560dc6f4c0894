// Package server is the delivery shell around the thermal façade: a gRPC
// service for queries and watch streams, plus an HTTP listener with a
// WebSocket event feed.
package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/encoding"

	"thermal-agent/internal/hal"
)

const serviceName = "thermal.v1.ThermalService"

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// GRPCServer exposes the façade operations over gRPC with a JSON codec so
// callers do not need generated stubs.
type GRPCServer struct {
	logger      *slog.Logger
	svc         *hal.Service
	addr        string
	eventBuffer int
	grpc        *grpc.Server
	nextWatchID atomic.Uint64
}

func NewGRPCServer(addr string, svc *hal.Service, tlsCfg *tls.Config, eventBuffer int, logger *slog.Logger) *GRPCServer {
	encoding.RegisterCodec(jsonCodec{})

	opts := []grpc.ServerOption{grpc.ForceServerCodec(jsonCodec{})}
	if tlsCfg != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}

	s := &GRPCServer{
		logger:      logger,
		svc:         svc,
		addr:        addr,
		eventBuffer: eventBuffer,
		grpc:        grpc.NewServer(opts...),
	}
	s.grpc.RegisterService(&thermalServiceDesc, s)
	return s
}

// Run serves until the context is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen grpc endpoint %s: %w", s.addr, err)
	}
	s.logger.Info("grpc endpoint listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		s.grpc.GracefulStop()
	}()

	if err := s.grpc.Serve(ln); err != nil {
		return fmt.Errorf("serve grpc endpoint %s: %w", s.addr, err)
	}
	return nil
}

var thermalServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*GRPCServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTemperatures", Handler: getTemperaturesHandler},
		{MethodName: "GetCpuUsages", Handler: getCPUUsagesHandler},
		{MethodName: "GetCoolingDevices", Handler: getCoolingDevicesHandler},
		{MethodName: "GetCurrentTemperatures", Handler: getCurrentTemperaturesHandler},
		{MethodName: "GetTemperatureThresholds", Handler: getTemperatureThresholdsHandler},
		{MethodName: "GetCurrentCoolingDevices", Handler: getCurrentCoolingDevicesHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchThrottling", Handler: watchThrottlingHandler, ServerStreams: true},
	},
}

func getTemperaturesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req Empty
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, temps := s.svc.GetTemperatures()
	return TemperaturesResponse{Status: status, Temperatures: temps}, nil
}

func getCPUUsagesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req Empty
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, usages := s.svc.GetCPUUsages()
	return CPUUsagesResponse{Status: status, Usages: usages}, nil
}

func getCoolingDevicesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req Empty
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, devices := s.svc.GetCoolingDevices()
	return CoolingDevicesResponse{Status: status, Devices: devices}, nil
}

func getCurrentTemperaturesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req FilterRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, temps := s.svc.GetCurrentTemperatures(req.FilterByType, req.Type)
	return CurrentTemperaturesResponse{Status: status, Temperatures: temps}, nil
}

func getTemperatureThresholdsHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req FilterRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, thresholds := s.svc.GetTemperatureThresholds(req.FilterByType, req.Type)
	return ThresholdsResponse{Status: status, Thresholds: thresholds}, nil
}

func getCurrentCoolingDevicesHandler(srv any, _ context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	s := srv.(*GRPCServer)
	var req FilterRequest
	if err := dec(&req); err != nil {
		return nil, err
	}
	status, devices := s.svc.GetCurrentCoolingDevices(req.FilterByType, string(req.Type))
	return CoolingDevicesResponse{Status: status, Devices: devices}, nil
}
