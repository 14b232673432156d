// Package ws fans notification messages out to connected clients. The hub
// is a single-goroutine actor: all state lives inside run() and every
// operation is a command on cmdCh, so no locks are needed.
package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	userID string
	conn   *websocket.Conn
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	msgType string
	data    []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdSendTo struct {
	userID string
	data   []byte
}

func (cmdSendTo) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// Hub tracks every open connection and an index of the latest connection
// per user identity. Directed sends go through the index; when the same
// user connects twice, the newer connection wins directed messages while
// both still receive broadcasts.
type Hub struct {
	cmdCh    chan hubCmd
	clients  map[*websocket.Conn]*clientWriter
	users    map[string]*websocket.Conn
	connUser map[*websocket.Conn]string
}

func NewHub() *Hub {
	hub := &Hub{
		cmdCh:    make(chan hubCmd, 256),
		clients:  make(map[*websocket.Conn]*clientWriter),
		users:    make(map[string]*websocket.Conn),
		connUser: make(map[*websocket.Conn]string),
	}
	go hub.run()
	return hub
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c)
		case cmdSendTo:
			h.handleSendTo(c)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	h.clients[c.conn] = newClientWriter(c.conn)
	if c.userID != "" {
		h.users[c.userID] = c.conn
		h.connUser[c.conn] = c.userID
	}
	metrics.WSConnectedClients.Set(float64(len(h.clients)))
	slog.Debug("Client registered", "user_id", c.userID, "total_clients", len(h.clients))
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)

	if userID, ok := h.connUser[conn]; ok {
		delete(h.connUser, conn)
		// Keep the index entry when the user reconnected already.
		if h.users[userID] == conn {
			delete(h.users, userID)
		}
	}

	metrics.WSConnectedClients.Set(float64(len(h.clients)))
}

func (h *Hub) handleBroadcast(c cmdBroadcast) {
	metrics.WSBroadcastsTotal.WithLabelValues(c.msgType).Inc()

	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- c.data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "user_id", h.connUser[conn])
		metrics.WSDroppedClientsTotal.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleSendTo(c cmdSendTo) {
	conn, exists := h.users[c.userID]
	if !exists {
		return
	}
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	select {
	case cw.sendCh <- c.data:
	default:
		slog.Warn("Disconnecting slow client", "user_id", c.userID)
		metrics.WSDroppedClientsTotal.Inc()
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
	h.users = make(map[string]*websocket.Conn)
	h.connUser = make(map[*websocket.Conn]string)
	metrics.WSConnectedClients.Set(0)
}

// --- Public API ---

// Register adds a connection. userID may be empty for anonymous listeners
// that only receive broadcasts.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.cmdCh <- cmdRegister{userID: userID, conn: conn}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

// Broadcast sends an envelope to every connected client. Clients whose send
// buffer is full are disconnected rather than allowed to stall the hub.
func (h *Hub) Broadcast(envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		slog.Error("Failed to marshal broadcast envelope", "type", envelope.MessageType(), "error", err)
		return
	}
	h.cmdCh <- cmdBroadcast{msgType: envelope.MessageType(), data: data}
}

// SendTo delivers an envelope to one user's latest connection. Unknown
// users are silently ignored.
func (h *Hub) SendTo(userID string, envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		slog.Error("Failed to marshal directed envelope", "type", envelope.MessageType(), "error", err)
		return
	}
	h.cmdCh <- cmdSendTo{userID: userID, data: data}
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
}
