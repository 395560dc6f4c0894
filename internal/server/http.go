package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"thermal-agent/internal/hal"
	"thermal-agent/internal/model"
	"thermal-agent/internal/registry"
)

const wsWriteTimeout = 5 * time.Second

// HTTPServer carries the WebSocket event feed and the health endpoint.
type HTTPServer struct {
	logger   *slog.Logger
	svc      *hal.Service
	addr     string
	tlsCfg   *tls.Config
	health   func() map[string]any
	nextConn atomic.Uint64
}

func NewHTTPServer(addr string, svc *hal.Service, tlsCfg *tls.Config, health func() map[string]any, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{logger: logger, svc: svc, addr: addr, tlsCfg: tlsCfg, health: health}
}

// Run serves until the context is canceled.
func (s *HTTPServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", s.handleEvents)
	mux.HandleFunc("/healthz", s.handleHealth)

	srv := &http.Server{
		Addr:      s.addr,
		Handler:   mux,
		TLSConfig: s.tlsCfg,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http endpoint listening", "addr", s.addr)
		var err error
		if s.tlsCfg != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		errCh <- err
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve http endpoint %s: %w", s.addr, err)
	}
}

// handleEvents upgrades the connection and registers it as an observer.
// An optional ?type=CPU query parameter activates the sensor type filter.
func (s *HTTPServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "event feed terminated")

	filterType := model.SensorType(r.URL.Query().Get("type"))
	filterActive := filterType != ""

	handle := registry.Handle(fmt.Sprintf("ws-events-%d", s.nextConn.Add(1)))
	obs := newChanObserver(16)
	if st := s.svc.RegisterObserver(handle, obs, filterActive, filterType); st.Code != model.StatusSuccess {
		_ = conn.Close(websocket.StatusPolicyViolation, st.DebugMessage)
		return
	}
	defer func() {
		s.svc.UnregisterObserver(handle)
	}()

	s.logger.Info("event feed opened", "handle", string(handle), "filter_active", filterActive, "filter_type", string(filterType))
	defer s.logger.Info("event feed closed", "handle", string(handle))

	ctx := r.Context()
	// Reads are only needed to surface the peer closing the socket.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			return
		case ev := <-obs.events:
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, conn, EventFrame{Event: ev})
			cancel()
			if err != nil {
				s.logger.Warn("event feed write failed", "handle", string(handle), "error", err)
				return
			}
		}
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	snapshot := map[string]any{}
	if s.health != nil {
		snapshot = s.health()
	}
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn("write health response failed", "error", err)
	}
}
