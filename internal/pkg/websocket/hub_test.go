package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T, opts Options) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop(), opts)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
		_ = hub.ServeWS(w, r, userID)
	}))
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, userID int64, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + strconv.FormatInt(userID, 10)
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHubDeliversToUserSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, srv, cancel := startHub(t, Options{})
	defer srv.Close()

	conn, _, err := dial(t, srv, 7, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), &Event{Type: "notification", UserID: 7, Payload: map[string]string{"message": "CIE2 marks approved"}}))
	require.NoError(t, hub.Publish(context.Background(), &Event{Type: "notification", UserID: 8}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, int64(7), got.UserID)
	assert.False(t, got.Timestamp.IsZero())

	cancel()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	assert.ErrorIs(t, hub.Publish(context.Background(), &Event{UserID: 7}), ErrHubStopped)
}

func TestHubUnregistersClosedSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub, srv, cancel := startHub(t, Options{})
	defer srv.Close()
	defer cancel()

	conn, _, err := dial(t, srv, 3, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount(3) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, srv, cancel := startHub(t, Options{AllowedOrigins: []string{"http://portal.test"}})
	defer srv.Close()
	defer cancel()

	_, resp, err := dial(t, srv, 1, http.Header{"Origin": []string{"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, 1, http.Header{"Origin": []string{"http://portal.test"}})
	require.NoError(t, err)
	conn.Close()
}
