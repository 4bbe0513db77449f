package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// testServer is a minimal channel endpoint that records outbound frames
// and can push inbound ones.
type testServer struct {
	*httptest.Server
	mu       sync.Mutex
	conns    []*websocket.Conn
	received chan Envelope
	accepted chan struct{}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		received: make(chan Envelope, 16),
		accepted: make(chan struct{}, 16),
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()
		ts.accepted <- struct{}{}
		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			ts.received <- env
		}
	}))
	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) push(t *testing.T, msgType string, payload any) {
	t.Helper()
	raw, _ := json.Marshal(payload)
	ts.mu.Lock()
	conn := ts.conns[len(ts.conns)-1]
	ts.mu.Unlock()
	if err := conn.WriteJSON(Envelope{Type: msgType, Payload: raw, Timestamp: time.Now().UTC().Format(time.RFC3339)}); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func (ts *testServer) dropAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, conn := range ts.conns {
		conn.Close()
	}
	ts.conns = nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %s", timeout)
}

func TestConnectDispatchesInOrder(t *testing.T) {
	srv := newTestServer(t)
	var mu sync.Mutex
	var got []string
	state := NewState()
	c := NewClient(srv.wsURL(), func(env Envelope) {
		mu.Lock()
		got = append(got, env.Type)
		mu.Unlock()
	}, state, slog.Default())
	defer c.Close()

	c.Connect()
	<-srv.accepted
	waitFor(t, time.Second, func() bool { return state.Get().Connected })

	srv.push(t, "robot.updated", map[string]any{"id": "r1"})
	srv.push(t, "command.status", map[string]any{"id": "c1"})
	srv.push(t, "something.unknown", map[string]any{})

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	})
	mu.Lock()
	defer mu.Unlock()
	want := []string{"robot.updated", "command.status", "something.unknown"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("got[%d] = %s, want %s", i, got[i], w)
		}
	}
}

func TestConnectIdempotent(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.wsURL(), func(Envelope) {}, NewState(), slog.Default())
	defer c.Close()

	c.Connect()
	<-srv.accepted
	c.Connect()
	c.Connect()

	select {
	case <-srv.accepted:
		t.Fatalf("second connection opened while first is live")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendEnvelopeShape(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.wsURL(), func(Envelope) {}, NewState(), slog.Default())
	defer c.Close()

	c.Connect()
	<-srv.accepted

	c.Send("command.send", map[string]any{"robotId": "r1", "commandType": "goto"})

	select {
	case env := <-srv.received:
		if env.Type != "command.send" {
			t.Errorf("type = %s", env.Type)
		}
		var payload map[string]any
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if payload["robotId"] != "r1" {
			t.Errorf("payload = %v", payload)
		}
		if _, err := time.Parse(time.RFC3339, env.Timestamp); err != nil {
			t.Errorf("timestamp %q not RFC3339: %v", env.Timestamp, err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no frame received")
	}
}

func TestSendSilentNoopWhenDown(t *testing.T) {
	c := NewClient("ws://127.0.0.1:9/ws", func(Envelope) {}, NewState(), slog.Default())
	// Never connected; must not panic or block.
	c.Send("command.send", map[string]any{"robotId": "r1"})
	c.Close()
}

func TestReconnectOncePerCloseAfterDelay(t *testing.T) {
	srv := newTestServer(t)
	state := NewState()
	c := NewClient(srv.wsURL(), func(Envelope) {}, state, slog.Default())
	c.delay = 50 * time.Millisecond
	defer c.Close()

	opens := 0
	var openMu sync.Mutex
	c.OnOpen = func(SendFunc) {
		openMu.Lock()
		opens++
		openMu.Unlock()
	}
	closes := 0
	c.OnClose = func() {
		openMu.Lock()
		closes++
		openMu.Unlock()
	}

	c.Connect()
	<-srv.accepted

	dropped := time.Now()
	srv.dropAll()
	waitFor(t, time.Second, func() bool { return state.Get().Reconnecting })

	// Exactly one reconnect, no earlier than the fixed delay.
	<-srv.accepted
	if elapsed := time.Since(dropped); elapsed < c.delay {
		t.Errorf("reconnected after %s, want >= %s", elapsed, c.delay)
	}
	waitFor(t, time.Second, func() bool { return state.Get().Connected })

	openMu.Lock()
	defer openMu.Unlock()
	if opens != 2 || closes != 1 {
		t.Errorf("opens = %d closes = %d, want 2 and 1", opens, closes)
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	srv := newTestServer(t)
	state := NewState()
	c := NewClient(srv.wsURL(), func(Envelope) {}, state, slog.Default())
	c.delay = 50 * time.Millisecond

	c.Connect()
	<-srv.accepted
	srv.dropAll()
	waitFor(t, time.Second, func() bool { return state.Get().Reconnecting })

	c.Close()

	select {
	case <-srv.accepted:
		t.Fatalf("reconnect fired after teardown")
	case <-time.After(3 * c.delay):
	}
	if st := state.Get(); st.Connected || st.Reconnecting {
		t.Errorf("state after close = %+v", st)
	}
}

func TestMalformedFrameDropped(t *testing.T) {
	srv := newTestServer(t)
	var mu sync.Mutex
	var got []string
	c := NewClient(srv.wsURL(), func(env Envelope) {
		mu.Lock()
		got = append(got, env.Type)
		mu.Unlock()
	}, NewState(), slog.Default())
	defer c.Close()

	c.Connect()
	<-srv.accepted

	srv.mu.Lock()
	conn := srv.conns[0]
	srv.mu.Unlock()
	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	srv.push(t, "robot.updated", map[string]any{"id": "r1"})

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "robot.updated"
	})
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		explicit, server, want string
	}{
		{"ws://ops.local/stream", "http://ignored", "ws://ops.local/stream"},
		{"", "http://localhost:8000", "ws://localhost:8000/ws"},
		{"", "https://fleet.example.com", "wss://fleet.example.com/ws"},
	}
	for _, tc := range cases {
		got, err := ResolveURL(tc.explicit, tc.server)
		if err != nil {
			t.Fatalf("ResolveURL(%q, %q): %v", tc.explicit, tc.server, err)
		}
		if got != tc.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tc.explicit, tc.server, got, tc.want)
		}
	}
}
