package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/smarthouse-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/logging"
)

// Event channels a WebSocket client can subscribe to.
const (
	// ChannelReport carries the full report on every report tick.
	ChannelReport = "house.report"

	// ChannelDevice carries a device snapshot after a toggle attempt.
	ChannelDevice = "device.state_changed"
)

// Envelope types.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"
	MsgPong        = "pong"
	MsgEvent       = "event"
	MsgAck         = "ack"
	MsgError       = "error"
)

// outboxSize is how many frames a subscriber may fall behind before
// events are dropped for it.
const outboxSize = 64

// Envelope is the frame exchanged with WebSocket clients in both directions.
type Envelope struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event,omitempty"`
	Time  string          `json:"time,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChannelList is the data of subscribe and unsubscribe envelopes.
type ChannelList struct {
	Channels []string `json:"channels"`
}

// Hub fans events out to subscribed WebSocket clients.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	hub    *Hub
	conn   *websocket.Conn
	outbox chan []byte

	mu       sync.RWMutex
	channels map[string]bool
}

// NewHub creates a hub with no subscribers.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Run disconnects every client once ctx is done.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.outbox)
		sub.conn.Close()
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// remove closes sub's outbox unless Run already did.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	n := len(h.subs)
	h.mu.Unlock()

	if ok {
		close(sub.outbox)
	}
	h.logger.Debug("websocket client disconnected", "clients", n)
}

// Broadcast sends data as an event on channel to its subscribers.
// A subscriber whose outbox is full misses the event.
func (h *Hub) Broadcast(channel string, data any) {
	frame, err := encodeEnvelope(Envelope{Type: MsgEvent, Event: channel}, data)
	if err != nil {
		h.logger.Error("failed to encode event", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs {
		if sub.wants(channel) && sub.queue(frame) {
			delivered++
		}
	}
	if delivered > 0 {
		h.logger.Debug("event broadcast", "channel", channel, "recipients", delivered)
	}
}

// encodeEnvelope stamps env with the current time and data, then encodes it.
func encodeEnvelope(env Envelope, data any) ([]byte, error) {
	env.Time = time.Now().UTC().Format(time.RFC3339)
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// checkOrigin accepts clients without an Origin header, same-host pages and
// the configured allowed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.wsCfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		hub:      s.hub,
		conn:     conn,
		outbox:   make(chan []byte, outboxSize),
		channels: make(map[string]bool),
	}
	s.hub.add(sub)

	go sub.writeLoop()
	go sub.readLoop()
}

// readLoop handles client envelopes until the connection fails.
// Any frame, including a pong, extends the read deadline.
func (sub *subscriber) readLoop() {
	defer func() {
		sub.hub.remove(sub)
		sub.conn.Close()
	}()

	cfg := sub.hub.cfg
	idle := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second
	extend := func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(idle))
	}

	sub.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	extend("") //nolint:errcheck // a failed deadline surfaces on the next read
	sub.conn.SetPongHandler(extend)

	for {
		_, frame, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sub.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		extend("") //nolint:errcheck // a failed deadline surfaces on the next read
		sub.handle(frame)
	}
}

// writeLoop drains the outbox and pings at the configured interval.
func (sub *subscriber) writeLoop() {
	cfg := sub.hub.cfg
	ping := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	defer func() {
		ping.Stop()
		sub.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // the write below reports the failure
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return sub.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case frame, open := <-sub.outbox:
			if !open {
				write(websocket.CloseMessage, nil) //nolint:errcheck // peer may be gone
				return
			}
			if write(websocket.TextMessage, frame) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (sub *subscriber) handle(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		sub.reply(Envelope{Type: MsgError}, map[string]string{"message": "invalid JSON message"})
		return
	}

	switch env.Type {
	case MsgSubscribe, MsgUnsubscribe:
		var list ChannelList
		if err := json.Unmarshal(env.Data, &list); err != nil {
			sub.reply(Envelope{Type: MsgError, ID: env.ID}, map[string]string{"message": "invalid channel list"})
			return
		}
		sub.setChannels(list.Channels, env.Type == MsgSubscribe)
		sub.reply(Envelope{Type: MsgAck, ID: env.ID}, list)
	case MsgPing:
		sub.reply(Envelope{Type: MsgPong, ID: env.ID}, nil)
	default:
		sub.reply(Envelope{Type: MsgError, ID: env.ID}, map[string]string{"message": "unknown message type: " + env.Type})
	}
}

func (sub *subscriber) setChannels(channels []string, on bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	for _, ch := range channels {
		if on {
			sub.channels[ch] = true
		} else {
			delete(sub.channels, ch)
		}
	}
}

func (sub *subscriber) wants(channel string) bool {
	sub.mu.RLock()
	defer sub.mu.RUnlock()
	return sub.channels[channel]
}

// queue adds frame to the outbox without blocking. It reports whether the
// frame was queued; a full or closed outbox drops it.
func (sub *subscriber) queue(frame []byte) (queued bool) {
	defer func() {
		if recover() != nil {
			queued = false
		}
	}()

	select {
	case sub.outbox <- frame:
		return true
	default:
		return false
	}
}

func (sub *subscriber) reply(env Envelope, data any) {
	frame, err := encodeEnvelope(env, data)
	if err != nil {
		return
	}
	sub.queue(frame)
}
