package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReconnectDelay is the fixed interval between a close and the next
// connect attempt. No exponential backoff: a single operator station
// cannot herd.
const ReconnectDelay = 3 * time.Second

// Envelope is the wire frame shared by both directions.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// Handler consumes one inbound envelope. Handlers run on the read
// goroutine, strictly in arrival order.
type Handler func(Envelope)

// SendFunc is the outbound capability handed to OnOpen.
type SendFunc func(msgType string, payload any)

// Client owns the one persistent channel to the server. On close it
// revokes the send capability and schedules exactly one reconnect after
// the fixed delay; Close cancels any pending reconnect.
type Client struct {
	url     string
	handler Handler
	state   *State
	dialer  *websocket.Dialer
	delay   time.Duration
	log     *slog.Logger

	// OnOpen receives the send capability each time the channel opens.
	OnOpen func(SendFunc)
	// OnClose fires when the channel is lost, before any reconnect.
	OnClose func()

	mu      sync.Mutex
	conn    *websocket.Conn
	dialing bool
	timer   *time.Timer
	closed  bool

	writeMu sync.Mutex
}

// NewClient returns a client for the given channel URL. Nothing is
// dialed until Connect.
func NewClient(wsURL string, handler Handler, state *State, log *slog.Logger) *Client {
	return &Client{
		url:     wsURL,
		handler: handler,
		state:   state,
		dialer:  websocket.DefaultDialer,
		delay:   ReconnectDelay,
		log:     log,
	}
}

// ResolveURL picks the channel URL: the explicitly configured one if
// present, otherwise ws(s)://<host>/ws derived from the server URL.
func ResolveURL(explicit, serverURL string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("resolve channel url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Connect establishes the channel if not already open or dialing.
// Idempotent; safe to call from the reconnect timer and from Start.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.closed || c.conn != nil || c.dialing {
		c.mu.Unlock()
		return
	}
	c.dialing = true
	c.mu.Unlock()

	conn, _, err := c.dialer.Dial(c.url, nil)

	c.mu.Lock()
	c.dialing = false
	if err != nil {
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		c.log.Warn("channel dial failed", "url", c.url, "error", err)
		c.state.set(false, true)
		c.scheduleReconnect()
		return
	}
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.log.Info("channel connected", "url", c.url)
	c.state.set(true, false)
	if c.OnOpen != nil {
		c.OnOpen(c.Send)
	}
	go c.readLoop(conn)
}

// Send writes one envelope. With the channel down it is a silent
// no-op; outbound dispatch is fire-and-forget by design.
func (c *Client) Send(msgType string, payload any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn("encode outbound payload", "type", msgType, "error", err)
		return
	}
	env := Envelope{
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(env); err != nil {
		c.log.Warn("channel write failed", "type", msgType, "error", err)
	}
}

// Close tears the channel down for good: the pending reconnect timer is
// cancelled and no further reconnect is scheduled.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	timer := c.timer
	c.timer = nil
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if conn != nil {
		conn.Close()
	}
	c.state.set(false, false)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.connLost(conn, err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frames are dropped, never fatal.
			c.log.Warn("malformed inbound frame", "error", err)
			continue
		}
		c.handler(env)
	}
}

// connLost handles a channel loss observed by the read loop: revoke the
// send capability, flag reconnecting, and schedule one reconnect.
func (c *Client) connLost(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		// Already handled, or torn down by Close.
		c.mu.Unlock()
		return
	}
	c.conn = nil
	closed := c.closed
	c.mu.Unlock()
	conn.Close()

	if c.OnClose != nil {
		c.OnClose()
	}
	if closed {
		c.state.set(false, false)
		return
	}
	c.log.Warn("channel lost, reconnecting", "delay", c.delay, "cause", cause)
	c.state.set(false, true)
	c.scheduleReconnect()
}

// scheduleReconnect arms exactly one timer per close event.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.timer = nil
		c.mu.Unlock()
		c.Connect()
	})
}
