package server

import (
	"fmt"

	"google.golang.org/grpc"

	"thermal-agent/internal/model"
	"thermal-agent/internal/registry"
)

// watchThrottlingHandler turns one server stream into one observer
// registration. The per-stream id doubles as the registry handle, so the
// registration lives exactly as long as the connection.
func watchThrottlingHandler(srv any, stream grpc.ServerStream) error {
	s := srv.(*GRPCServer)

	var req FilterRequest
	if err := stream.RecvMsg(&req); err != nil {
		return fmt.Errorf("receive watch request: %w", err)
	}

	handle := registry.Handle(fmt.Sprintf("grpc-watch-%d", s.nextWatchID.Add(1)))
	obs := newChanObserver(s.eventBuffer)

	if st := s.svc.RegisterObserver(handle, obs, req.FilterByType, req.Type); st.Code != model.StatusSuccess {
		return fmt.Errorf("register observer: %s", st.DebugMessage)
	}
	defer func() {
		s.svc.UnregisterObserver(handle)
	}()

	s.logger.Info("watch stream opened", "handle", string(handle), "filter_active", req.FilterByType, "filter_type", string(req.Type))
	defer s.logger.Info("watch stream closed", "handle", string(handle))

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-obs.events:
			if err := stream.SendMsg(EventFrame{Event: ev}); err != nil {
				return fmt.Errorf("send throttling event: %w", err)
			}
		}
	}
}

// chanObserver bridges registry callbacks onto a buffered channel so the
// notifier never blocks on a slow stream. When the buffer is full the
// oldest pending event is dropped in favor of the newest.
type chanObserver struct {
	events chan model.ThrottlingEvent
}

func newChanObserver(buffer int) *chanObserver {
	if buffer <= 0 {
		buffer = 1
	}
	return &chanObserver{events: make(chan model.ThrottlingEvent, buffer)}
}

func (o *chanObserver) OnThrottlingEvent(ev model.ThrottlingEvent) {
	for {
		select {
		case o.events <- ev:
			return
		default:
			select {
			case <-o.events:
			default:
			}
		}
	}
}
