package ws_room

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/mavrushkin/swipematch/internal/model"
)

const (
	// EventRoomUpdate fires when the room row changes, i.e. when the second
	// seat is claimed.
	EventRoomUpdate = "ROOM_UPDATE"
	// EventMatchInsert fires once per created match row.
	EventMatchInsert = "MATCH_INSERT"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type RoomUpdatePayload struct {
	RoomID        string  `json:"room_id"`
	PIN           string  `json:"pin"`
	Player2UserID *string `json:"player2_user_id"`
	Status        string  `json:"status"`
}

type MatchInsertPayload struct {
	RoomID  string `json:"room_id"`
	MovieID string `json:"movie_id"`
}

type Client struct {
	hub    *Hub
	conn   wsConn
	send   chan Event
	roomID string
}

type roomEvent struct {
	roomID string
	event  Event
}

type Hub struct {
	logger     *slog.Logger
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomEvent
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomEvent),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case roomEvent := <-h.broadcast:
			h.broadcastToRoom(roomEvent.roomID, roomEvent.event)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	if _, exists := h.rooms[client.roomID]; !exists {
		h.rooms[client.roomID] = make(map[*Client]bool)
	}
	h.rooms[client.roomID][client] = true

	h.logger.Info("client registered", "room_id", client.roomID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)

		if roomClients, exists := h.rooms[client.roomID]; exists {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, client.roomID)
			}
		}
	}

	h.logger.Info("client unregistered", "room_id", client.roomID)
}

// Slow consumers lose events rather than blocking the hub; the polling
// fallback covers them.
func (h *Hub) broadcastToRoom(roomID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if roomClients, exists := h.rooms[roomID]; exists {
		for client := range roomClients {
			select {
			case client.send <- event:
			default:
				h.logger.Warn("dropping event for slow client", "room_id", roomID, "type", event.Type)
			}
		}
	}
}

// NotifyPlayerJoined pushes the room transition to everyone watching the
// room, the host's waiting screen included.
func (h *Hub) NotifyPlayerJoined(room model.Room) {
	payload := RoomUpdatePayload{
		RoomID: room.ID.String(),
		PIN:    room.PIN,
		Status: room.Status,
	}
	if room.HasPlayer2() {
		p2 := room.Player2UserID.String()
		payload.Player2UserID = &p2
	}

	h.broadcast <- roomEvent{
		roomID: room.ID.String(),
		event: Event{
			Type:    EventRoomUpdate,
			Payload: payload,
		},
	}
}

func (h *Hub) NotifyMatch(roomID uuid.UUID, movieID string) {
	h.broadcast <- roomEvent{
		roomID: roomID.String(),
		event: Event{
			Type: EventMatchInsert,
			Payload: MatchInsertPayload{
				RoomID:  roomID.String(),
				MovieID: movieID,
			},
		},
	}
}
