package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"currency-observer/src/helpers"
	"currency-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Session Table
// -----------------------------------------------------------------------------

func (s *Server) addClient(client *Client) {
	s.sessionsMu.Lock()
	s.sessions[client.sessionID] = client
	s.sessionsMu.Unlock()
}

// -----------------------------------------------------------------------------

// removeClient drops the session and closes its send channel exactly once.
// The registry entry goes with it: disconnect is the only event that
// unsubscribes.
func (s *Server) removeClient(client *Client) {
	s.sessionsMu.Lock()
	current, ok := s.sessions[client.sessionID]
	if ok && current == client {
		delete(s.sessions, client.sessionID)
		close(client.send)
	}
	s.sessionsMu.Unlock()

	if ok {
		s.Registry.Unregister(client.sessionID)
		s.Logger.Info("Client %s disconnected", client.sessionID)
	}
}

// -----------------------------------------------------------------------------
// Delivery Interface Implementation
// -----------------------------------------------------------------------------

// SendToSession enqueues a payload onto one session's send buffer.
// Fire-and-forget: a full buffer or an unknown session is reported to the
// caller and nothing else happens. A slow consumer keeps its registration;
// only a disconnect event removes it.
func (s *Server) SendToSession(sessionID string, payload models.MRateUpdate) error {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	client, ok := s.sessions[sessionID]
	if !ok {
		return helpers.NewDeliveryError(fmt.Sprintf("unknown session %s", sessionID), nil)
	}

	// The send channel is only closed under the write lock in removeClient,
	// so enqueueing under the read lock cannot race with the close.
	select {
	case client.send <- payload:
		return nil
	default:
		return helpers.NewDeliveryError(fmt.Sprintf("send buffer full for session %s", sessionID), nil)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:       s,
		conn:      conn,
		sessionID: uuid.NewString(),
		// Buffered channel so delivery never blocks the dispatcher
		send: make(chan interface{}, 64),
	}

	s.addClient(client)
	s.Logger.Info("Client %s connected", client.sessionID)

	// Announce the session id back to the client
	client.send <- models.MSessionHello{Type: "client_id", ID: client.sessionID}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *Server) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSelectCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Warning("Failed to parse client command from %s: %v", client.sessionID, err)
		return
	}

	if cmd.Command != "select_currency" {
		return
	}
	if cmd.CurrencyCode == "" {
		s.Logger.Debug("Empty currency code from %s, ignoring", client.sessionID)
		return
	}

	// Re-selection overwrites the previous choice; last write wins.
	s.Registry.Register(client.sessionID, cmd.CurrencyCode)

	ack := models.MSelectAck{
		Type:    "currency_selected",
		Message: fmt.Sprintf("You selected %s", cmd.CurrencyCode),
		ID:      client.sessionID,
	}

	select {
	case client.send <- ack:
	default:
		s.Logger.Debug("Ack dropped for %s: send buffer full", client.sessionID)
	}
}
