// Package realtime pushes session state changes to the browser tabs that
// share a session cookie.
package realtime

import (
	"context"
	"encoding/json"

	"barber-queue/internal/controller"
	"barber-queue/internal/logger"
	"barber-queue/internal/models"
	"barber-queue/internal/monitoring"
	"barber-queue/internal/payment"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const broadcastBuffer = 256

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscription struct {
	sessionID string
	conn      Conn
}

type message struct {
	sessionID string
	payload   []byte
}

// Snapshot is what a subscriber receives after every transition. It leaves
// out identity tokens and profile data.
type Snapshot struct {
	Type           string               `json:"type"`
	Key            string               `json:"key"`
	Screen         models.Screen        `json:"screen"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	PaymentOverlay bool                 `json:"payment_overlay"`
	PaymentPhase   payment.Phase        `json:"payment_phase"`
	Queue          *models.QueueView    `json:"queue,omitempty"`
	Notice         *models.Notice       `json:"notice,omitempty"`
}

type Hub struct {
	register   chan subscription
	unregister chan subscription
	broadcast  chan message
	clients    map[string]map[Conn]bool
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan subscription),
		unregister: make(chan subscription),
		broadcast:  make(chan message, broadcastBuffer),
		clients:    make(map[string]map[Conn]bool),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until ctx is done, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, conns := range h.clients {
				for c := range conns {
					c.Close()
				}
			}
			h.clients = make(map[string]map[Conn]bool)
			monitoring.SetWSClients(0)
			return
		case s := <-h.register:
			if h.clients[s.sessionID] == nil {
				h.clients[s.sessionID] = make(map[Conn]bool)
			}
			h.clients[s.sessionID][s.conn] = true
			monitoring.SetWSClients(h.count())
		case s := <-h.unregister:
			if conns, ok := h.clients[s.sessionID]; ok && conns[s.conn] {
				delete(conns, s.conn)
				if len(conns) == 0 {
					delete(h.clients, s.sessionID)
				}
				s.conn.Close()
				monitoring.SetWSClients(h.count())
			}
		case msg := <-h.broadcast:
			for c := range h.clients[msg.sessionID] {
				if err := c.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					logger.Debug("ws write failed", zap.String("session_id", msg.sessionID), zap.Error(err))
					delete(h.clients[msg.sessionID], c)
					c.Close()
				}
			}
			if len(h.clients[msg.sessionID]) == 0 {
				delete(h.clients, msg.sessionID)
			}
			monitoring.SetWSClients(h.count())
		}
	}
}

func (h *Hub) count() int {
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// Register closes c right away when the hub has stopped.
func (h *Hub) Register(sessionID string, c Conn) {
	select {
	case h.register <- subscription{sessionID: sessionID, conn: c}:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(sessionID string, c Conn) {
	select {
	case h.unregister <- subscription{sessionID: sessionID, conn: c}:
	case <-h.done:
	}
}

// Publish implements controller.Publisher. It never blocks the caller; when
// the buffer is full the update is dropped and the next one catches up.
func (h *Hub) Publish(sessionID string, st controller.State) {
	payload, err := json.Marshal(NewSnapshot(st))
	if err != nil {
		logger.Error("encode ws snapshot", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message{sessionID: sessionID, payload: payload}:
	default:
		logger.Warn("ws broadcast buffer full, dropping update", zap.String("session_id", sessionID))
	}
}

func NewSnapshot(st controller.State) Snapshot {
	return Snapshot{
		Type:           "state",
		Key:            st.RenderKey(),
		Screen:         st.Screen,
		PaymentStatus:  st.PaymentStatus,
		PaymentOverlay: st.PaymentOverlay,
		PaymentPhase:   st.Payment.Phase,
		Queue:          st.Queue,
		Notice:         st.Notice,
	}
}
