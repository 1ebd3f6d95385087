package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack/internal/logger"
)

func TestHubService_BroadcastReachesViewer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHubService(logger.Discard())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte(`{"frame":3}`))

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"frame":3}`, string(msg))

	cancel()
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
