// Package realtime pushes change notifications to connected browsers.
// Messages carry no authoritative state; clients refetch on receipt.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type EventType string

const (
	EventSync              EventType = "sync"
	EventGarbageCollection EventType = "garbage_collection"
	EventAdminPayment      EventType = "admin_payment"
)

// Event is a refetch signal. It names what changed, never the record itself.
type Event struct {
	Type       EventType `json:"type"`
	ChangeType string    `json:"changeType"`
	ID         string    `json:"id,omitempty"`
	Audience   Audience  `json:"-"`
}

// Audience limits which clients receive an event. The zero value reaches
// everyone; admins receive every event.
type Audience struct {
	Roles   []string
	UserIDs []uint
}

func (a Audience) allows(userID uint, role string) bool {
	if len(a.Roles) == 0 && len(a.UserIDs) == 0 {
		return true
	}
	if role == utils.RoleAdmin {
		return true
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	if userID == 0 {
		return false
	}
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Publisher is implemented by Hub. Services depend on this instead of the hub.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID uint
	role   string
}

type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	listeners []func(Event)
	upgrader  websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{clients: make(map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// OnPublish registers fn to run synchronously for every published event.
func (h *Hub) OnPublish(fn func(Event)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish fans ev out to every client in its audience. A client whose buffer
// is full is dropped so a slow reader never blocks the caller.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	log := logger.FromCtx(ctx).With(zap.String("method", "Hub.Publish"))

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error("failed to encode event", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	listeners := append([]func(Event){}, h.listeners...)
	var slow []*client
	for c := range h.clients {
		if !ev.Audience.allows(c.userID, c.role) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warn("dropping slow websocket client")
		h.remove(c)
	}
	for _, fn := range listeners {
		fn(ev)
	}

	log.Debug("event published",
		zap.String("type", string(ev.Type)),
		zap.String("change_type", ev.ChangeType),
	)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and keeps the connection until either side closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("method", "Hub.ServeWS"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		role:   utils.GetUserRoleFromContext(r.Context()),
	}
	h.add(c)
	log.Info("websocket client connected", zap.Uint("user_id", userID), zap.Int("clients", h.ClientCount()))

	go h.writePump(c)
	h.readPump(c)
}

// readPump only drains control frames; clients never send commands.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
