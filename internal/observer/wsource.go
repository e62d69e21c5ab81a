package observer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSEventSource subscribes to a room's event stream over the server's
// websocket endpoint.
type WSEventSource struct {
	baseURL string // e.g. ws://localhost:8080/api/v1
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

func NewWSEventSource(baseURL string) *WSEventSource {
	return &WSEventSource{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
		logger:  slog.Default(),
	}
}

func (s *WSEventSource) Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan Event, func(), error) {
	conn, _, err := s.dialer.DialContext(ctx, s.baseURL+"/ws/rooms/"+roomID.String(), nil)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan Event, 8)
	done := make(chan struct{})

	go func() {
		defer close(events)
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			// Unblocks the pending read; the reader then closes the
			// events channel.
			_ = conn.Close()
		})
	}

	return events, cancel, nil
}
