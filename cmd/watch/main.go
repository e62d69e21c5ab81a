// watch is a terminal client for a room: it issues a session, creates or
// joins a room, then follows the room through the waiting and playing phases
// printing every state change.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/mavrushkin/swipematch/internal/model"
	"github.com/mavrushkin/swipematch/internal/observer"
)

type roomDTO struct {
	ID            string        `json:"id"`
	PIN           string        `json:"pin"`
	HostUserID    string        `json:"host_user_id"`
	Player2UserID *string       `json:"player2_user_id"`
	Status        string        `json:"status"`
	MovieList     []model.Movie `json:"movie_list"`
}

type matchesDTO struct {
	Matches []struct {
		MovieID string `json:"movie_id"`
	} `json:"matches"`
}

type apiClient struct {
	baseURL    string
	userToken  string
	httpClient *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body io.Reader, out any) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.userToken != "" {
		req.Header.Set("X-user-token", c.userToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return resp, fmt.Errorf("%s %s: %s - %s", method, path, resp.Status, string(raw))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

func (c *apiClient) createSession() error {
	resp, err := c.do(http.MethodPost, "/auth/sessions", nil, nil)
	if err != nil {
		return err
	}
	c.userToken = resp.Header.Get("X-user-token")
	return nil
}

func (c *apiClient) createRoom() (roomDTO, error) {
	var room roomDTO
	_, err := c.do(http.MethodPost, "/rooms", nil, &room)
	return room, err
}

func (c *apiClient) joinRoom(pin string) (roomDTO, error) {
	body, _ := json.Marshal(map[string]string{"pin": pin})
	var room roomDTO
	_, err := c.do(http.MethodPost, "/rooms/join", bytes.NewReader(body), &room)
	return room, err
}

func (c *apiClient) swipe(roomID string, movieID string, liked bool) error {
	body, _ := json.Marshal(map[string]any{"movie_id": movieID, "liked": liked})
	_, err := c.do(http.MethodPost, "/rooms/"+roomID+"/swipes", bytes.NewReader(body), nil)
	return err
}

// httpStore adapts the REST API to the observer's store contract.
type httpStore struct {
	client *apiClient
}

func (s *httpStore) RoomByID(ctx context.Context, roomID uuid.UUID) (model.Room, error) {
	var dto roomDTO
	if _, err := s.client.do(http.MethodGet, "/rooms/"+roomID.String(), nil, &dto); err != nil {
		return model.Room{}, err
	}
	return toModelRoom(dto)
}

func (s *httpStore) MatchesByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Match, error) {
	var dto matchesDTO
	if _, err := s.client.do(http.MethodGet, "/rooms/"+roomID.String()+"/matches", nil, &dto); err != nil {
		return nil, err
	}
	matches := make([]model.Match, 0, len(dto.Matches))
	for _, m := range dto.Matches {
		matches = append(matches, model.Match{RoomID: roomID, MovieID: m.MovieID})
	}
	return matches, nil
}

func toModelRoom(dto roomDTO) (model.Room, error) {
	id, err := uuid.Parse(dto.ID)
	if err != nil {
		return model.Room{}, err
	}
	hostID, err := uuid.Parse(dto.HostUserID)
	if err != nil {
		return model.Room{}, err
	}

	room := model.Room{
		ID:         id,
		PIN:        dto.PIN,
		HostUserID: hostID,
		MovieList:  dto.MovieList,
		Status:     dto.Status,
	}
	if dto.Player2UserID != nil {
		p2, err := uuid.Parse(*dto.Player2UserID)
		if err != nil {
			return model.Room{}, err
		}
		room.Player2UserID = &p2
	}
	return room, nil
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server host:port")
	pin := flag.String("pin", "", "join an existing room by PIN instead of creating one")
	flag.Parse()

	client := newAPIClient("http://" + *addr + "/api/v1")
	if err := client.createSession(); err != nil {
		fmt.Fprintln(os.Stderr, "session:", err)
		os.Exit(1)
	}

	var (
		dto roomDTO
		err error
	)
	if *pin == "" {
		dto, err = client.createRoom()
		if err == nil {
			fmt.Println("room created, share this PIN:", dto.PIN)
		}
	} else {
		dto, err = client.joinRoom(*pin)
		if err == nil {
			fmt.Println("joined room", dto.PIN)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "room:", err)
		os.Exit(1)
	}

	room, err := toModelRoom(dto)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad room payload:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := &httpStore{client: client}
	source := observer.NewWSEventSource("ws://" + *addr + "/api/v1")
	watcher := observer.New(store, source, room)

	go func() {
		_ = watcher.Run(ctx)
	}()

	for snap := range watcher.Updates() {
		if !snap.Playing {
			fmt.Println("waiting for a friend, PIN:", snap.Room.PIN)
			continue
		}
		fmt.Printf("playing; matches so far: %v\n", snap.Matches)
	}
}
