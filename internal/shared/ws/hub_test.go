package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shifttrack/internal/shared/logger"
)

func testAuth(token string) (string, string, error) {
	switch token {
	case "manager-token":
		return "m1", "manager", nil
	case "worker-token":
		return "w1", "care_worker", nil
	default:
		return "", "", errors.New("invalid token")
	}
}

func startHub(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	hub := NewHub(testAuth, opts, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialAndAuth(t *testing.T, url, token string) (*websocket.Conn, map[string]string) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{"token": token}))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var reply map[string]string
	require.NoError(t, conn.ReadJSON(&reply))
	return conn, reply
}

func TestManagerReceivesRoleMessages(t *testing.T) {
	hub, url := startHub(t, Options{AllowedRoles: []string{"manager"}})

	conn, reply := dialAndAuth(t, url, "manager-token")
	assert.Equal(t, "authenticated", reply["status"])
	assert.Equal(t, "m1", reply["user_id"])

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.SendToRoleJSON("manager", map[string]string{"type": "shift_clocked_in"}))

	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "shift_clocked_in", msg["type"])
}

func TestPingPong(t *testing.T) {
	hub, url := startHub(t, Options{})
	conn, _ := dialAndAuth(t, url, "worker-token")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var msg map[string]string
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])
}

func TestRejectsDisallowedRoleAndBadToken(t *testing.T) {
	hub, url := startHub(t, Options{AllowedRoles: []string{"manager"}})

	_, reply := dialAndAuth(t, url, "worker-token")
	assert.Equal(t, ErrRoleNotAllowed.Error(), reply["error"])

	_, reply = dialAndAuth(t, url, "garbage")
	assert.Equal(t, "invalid token", reply["error"])

	assert.Zero(t, hub.ClientCount())
}

func TestCheckOrigin(t *testing.T) {
	hub := NewHub(testAuth, Options{AllowedOrigins: []string{"https://app.example"}}, logger.Nop())

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, hub.checkOrigin(r), "non-browser clients send no origin")

	r.Header.Set("Origin", "https://app.example")
	assert.True(t, hub.checkOrigin(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, hub.checkOrigin(r))
}

func TestStopClosesClientsAndRefusesNewOnes(t *testing.T) {
	hub := NewHub(testAuth, Options{}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	const n = 20
	conns := make([]*websocket.Conn, 0, n)
	for range n {
		conn, reply := dialAndAuth(t, url, "manager-token")
		require.Equal(t, "authenticated", reply["status"])
		conns = append(conns, conn)
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	for _, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		var closeErr *websocket.CloseError
		assert.ErrorAs(t, err, &closeErr)
	}
	assert.Zero(t, hub.ClientCount())

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.WriteJSON(map[string]string{"token": "manager-token"}))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err: %v", err)
}

func TestLeaveDoesNotBlockAfterStop(t *testing.T) {
	hub := NewHub(testAuth, Options{}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	left := make(chan struct{})
	go func() {
		for i := range 20 {
			hub.leave(&Client{ID: string(rune('a' + i))})
		}
		close(left)
	}()

	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}
	assert.False(t, hub.join(&Client{ID: "late"}))
}
