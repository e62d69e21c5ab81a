package ws_room

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type WSRoomUnitSuite struct {
	suite.Suite
}

func newTestServer() *httptest.Server {
	gin.SetMode(gin.TestMode)

	hub := NewHub(slog.Default())
	go hub.Run()

	engine := gin.New()
	NewController(hub).RegisterRoutes(engine.Group(""))

	return httptest.NewServer(engine)
}

func wsURL(server *httptest.Server, roomID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/rooms/" + roomID
}

func (suite *WSRoomUnitSuite) TestUpgrade(t provider.T) {
	t.Parallel()

	t.Run("Should upgrade a client without an origin header", func(t provider.T) {
		t.Parallel()
		server := newTestServer()
		defer server.Close()

		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "room-1"), nil)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})

	t.Run("Should upgrade a same-origin client", func(t provider.T) {
		t.Parallel()
		server := newTestServer()
		defer server.Close()

		header := http.Header{"Origin": {server.URL}}
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "room-1"), header)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})

	t.Run("Should refuse a cross-origin upgrade", func(t provider.T) {
		t.Parallel()
		server := newTestServer()
		defer server.Close()

		header := http.Header{"Origin": {"http://evil.example.com"}}
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "room-1"), header)
		if conn != nil {
			conn.Close()
		}

		assert.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(WSRoomUnitSuite))
}
