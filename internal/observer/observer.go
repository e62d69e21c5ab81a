// Package observer reconciles backend notifications and polling into local
// room state. It is the client half of the room protocol: a watcher waits for
// the second player, then accumulates matches, treating the push channel and
// the poll timer as two triggers for the same idempotent transition.
package observer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	ws_room "github.com/mavrushkin/swipematch/internal/delivery/ws/room"
	"github.com/mavrushkin/swipematch/internal/model"
)

const defaultPollInterval = 3 * time.Second

// Event is the wire event read off the room socket. Payload stays raw until
// the type is known.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Store is the request/response half of the duality: the room re-fetch
// backing the poll fallback and the reconciliation read of matches.
type Store interface {
	RoomByID(ctx context.Context, roomID uuid.UUID) (model.Room, error)
	MatchesByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Match, error)
}

// EventSource is the push half. The returned cancel func must stop delivery;
// the source closes the channel when the subscription ends.
type EventSource interface {
	Subscribe(ctx context.Context, roomID uuid.UUID) (<-chan Event, func(), error)
}

// Snapshot is the watcher's state as presented to the UI.
type Snapshot struct {
	Room    model.Room
	Playing bool
	Matches []string
}

type Watcher struct {
	store        Store
	events       EventSource
	pollInterval time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	room    model.Room
	playing bool
	matches []string
	seen    map[string]struct{}

	updates chan Snapshot
}

type WatcherOption func(*Watcher)

func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pollInterval = d
	}
}

func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

func New(store Store, events EventSource, room model.Room, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:        store,
		events:       events,
		pollInterval: defaultPollInterval,
		logger:       slog.Default(),
		room:         room,
		playing:      room.IsPlaying(),
		seen:         make(map[string]struct{}),
		updates:      make(chan Snapshot, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Updates delivers a snapshot after every state change. The channel is
// closed when Run returns.
func (w *Watcher) Updates() <-chan Snapshot {
	return w.updates
}

func (w *Watcher) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Watcher) snapshotLocked() Snapshot {
	matches := make([]string, len(w.matches))
	copy(matches, w.matches)
	return Snapshot{
		Room:    w.room,
		Playing: w.playing,
		Matches: matches,
	}
}

// Run blocks until ctx is cancelled. Subscriptions and timers are released
// on every mode switch and on teardown; no callbacks fire afterwards.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)

	if !w.Snapshot().Playing {
		if err := w.waitForPlayer2(ctx); err != nil {
			return err
		}
	}

	return w.watchMatches(ctx)
}

// waitForPlayer2 runs the waiting mode: room update events and a fixed
// interval poll both funnel into applyRoom, so it does not matter which
// signal arrives first or whether both do.
func (w *Watcher) waitForPlayer2(ctx context.Context) error {
	events, cancel, err := w.events.Subscribe(ctx, w.room.ID)
	if err != nil {
		// Degraded but alive: the poll alone still detects the join.
		w.logger.Warn("room subscription failed, polling only",
			slog.String("room_id", w.room.ID.String()),
			slog.String("error", err.Error()))
		events, cancel = nil, func() {}
	}
	defer cancel()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Type != ws_room.EventRoomUpdate {
				continue
			}
			room, ok := w.roomFromEvent(ev)
			if !ok {
				continue
			}
			if w.applyRoom(room) {
				return nil
			}

		case <-ticker.C:
			room, err := w.store.RoomByID(ctx, w.room.ID)
			if err != nil {
				w.logger.Warn("room poll failed",
					slog.String("room_id", w.room.ID.String()),
					slog.String("error", err.Error()))
				continue
			}
			if w.applyRoom(room) {
				return nil
			}
		}
	}
}

// applyRoom is the single reconciliation rule for the waiting mode. Applying
// the "player2 joined" transition twice is harmless: the first application
// wins, later ones are no-ops.
func (w *Watcher) applyRoom(room model.Room) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.playing {
		return true
	}

	w.room = room
	if !room.IsPlaying() {
		return false
	}

	w.playing = true
	w.emitLocked()
	return true
}

// watchMatches runs the playing mode. The subscription is established before
// the reconciliation read, and accumulation is duplicate-safe, so a match
// landing between the two shows up exactly once no matter which path
// delivered it.
func (w *Watcher) watchMatches(ctx context.Context) error {
	events, cancel, err := w.events.Subscribe(ctx, w.room.ID)
	if err != nil {
		w.logger.Warn("match subscription failed",
			slog.String("room_id", w.room.ID.String()),
			slog.String("error", err.Error()))
		events, cancel = nil, func() {}
	}
	defer cancel()

	w.seedMatches(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Type != ws_room.EventMatchInsert {
				continue
			}
			var payload ws_room.MatchInsertPayload
			if err := json.Unmarshal(ev.Payload, &payload); err != nil {
				w.logger.Warn("bad match payload", slog.String("error", err.Error()))
				continue
			}
			w.addMatch(payload.MovieID)
		}
	}
}

// seedMatches covers matches that happened before this client was watching,
// e.g. after a page reload.
func (w *Watcher) seedMatches(ctx context.Context) {
	matches, err := w.store.MatchesByRoom(ctx, w.room.ID)
	if err != nil {
		w.logger.Warn("match reconciliation read failed",
			slog.String("room_id", w.room.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	for _, m := range matches {
		w.addMatch(m.MovieID)
	}
}

func (w *Watcher) addMatch(movieID string) {
	if movieID == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.seen[movieID]; dup {
		return
	}
	w.seen[movieID] = struct{}{}
	w.matches = append(w.matches, movieID)
	w.emitLocked()
}

func (w *Watcher) roomFromEvent(ev Event) (model.Room, bool) {
	var payload ws_room.RoomUpdatePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		w.logger.Warn("bad room payload", slog.String("error", err.Error()))
		return model.Room{}, false
	}

	// The push payload carries no movie list; the one fixed at creation is
	// already held locally.
	room := w.Snapshot().Room
	room.Status = payload.Status
	room.Player2UserID = nil
	if payload.Player2UserID != nil {
		p2, err := uuid.Parse(*payload.Player2UserID)
		if err != nil {
			w.logger.Warn("bad player2 id in room payload", slog.String("error", err.Error()))
			return model.Room{}, false
		}
		room.Player2UserID = &p2
	}
	return room, true
}

// emitLocked publishes the current snapshot without ever blocking state
// transitions on a slow consumer.
func (w *Watcher) emitLocked() {
	select {
	case w.updates <- w.snapshotLocked():
	default:
	}
}
