package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
)

type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	switch token {
	case "alice":
		return &models.TokenClaims{UserID: 1, Username: "alice"}, nil
	case "bob":
		return &models.TokenClaims{UserID: 2, Username: "bob"}, nil
	}
	return nil, pkg.ErrUnauthorized
}

type presenceLog struct {
	mu     sync.Mutex
	events []string
}

func (p *presenceLog) add(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, s)
}

func (p *presenceLog) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func startServer(t *testing.T) (*Hub, *httptest.Server, *presenceLog) {
	t.Helper()
	hub := NewHub()
	presence := &presenceLog{}
	hub.OnUserConnect(func(id int64) { presence.add("up") })
	hub.OnUserDisconnect(func(id int64) { presence.add("down") })
	go hub.Run()

	h := NewHandler(hub, fakeValidator{}, nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return hub, srv, presence
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestRejectsMissingOrBadToken(t *testing.T) {
	_, srv, _ := startServer(t)

	for _, q := range []string{"", "?token=mallory"} {
		resp, err := http.Get(srv.URL + "/ws" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestReadyHeartbeatAndBroadcast(t *testing.T) {
	hub, srv, presence := startServer(t)

	alice := dial(t, srv, "alice")
	ready := readEvent(t, alice)
	assert.Equal(t, OpReady, ready.Op)

	require.NoError(t, alice.WriteJSON(Event{Op: OpHeartbeat}))
	assert.Equal(t, OpHeartbeatAck, readEvent(t, alice).Op)

	bob := dial(t, srv, "bob")
	assert.Equal(t, OpReady, readEvent(t, bob).Op)

	require.Eventually(t, func() bool { return len(hub.GetOnlineUserIDs()) == 2 },
		2*time.Second, 10*time.Millisecond)

	hub.BroadcastToAll(Event{Op: OpForumMessageCreate, Data: ForumMessageData{ID: 7, TopicID: 7}})
	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		assert.Equal(t, OpForumMessageCreate, ev.Op)
		assert.Greater(t, ev.Seq, int64(0))
	}

	hub.BroadcastToUser(2, Event{Op: OpForumMessageApprove})
	assert.Equal(t, OpForumMessageApprove, readEvent(t, bob).Op)

	require.NoError(t, bob.Close())
	require.Eventually(t, func() bool { return len(hub.GetOnlineUserIDs()) == 1 },
		2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		p := presence.snapshot()
		return len(p) == 3 && p[2] == "down"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://forum.example"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(r), "no Origin header")

	r.Header.Set("Origin", "https://forum.example")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(r))

	assert.True(t, originChecker([]string{"*"})(r))
	assert.True(t, originChecker(nil)(r))
}
