package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/logging"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect from arbitrary origins
	},
}

type inboundMessage struct {
	Type string `json:"type"`
}

func (s *Server) handleWebSocket(c echo.Context) error {
	userID := c.Param("user_id")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	hub := s.deps.Hub
	hub.Register(userID, conn)
	hub.SendTo(userID, ws.NewConnectionMessage(userID, s.deps.Clock.Now()))
	logging.WithUser(userID).Debug("WebSocket client connected")

	// Read pump. Clients send pings to keep the connection warm; anything
	// else is echoed back.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			hub.SendTo(userID, ws.NewErrorMessage("Invalid JSON format", s.deps.Clock.Now()))
			continue
		}

		if msg.Type == ws.TypePing {
			hub.SendTo(userID, ws.NewPongMessage(s.deps.Clock.Now()))
			continue
		}

		var raw any
		_ = json.Unmarshal(data, &raw)
		hub.SendTo(userID, ws.NewEchoMessage(raw, s.deps.Clock.Now()))
	}

	hub.Unregister(conn)
	logging.WithUser(userID).Debug("WebSocket client disconnected")
	return nil
}
