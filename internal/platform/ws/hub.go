// Package ws provides the WebSocket signaling channel for video
// consultations. Clients join a room and exchange SDP/ICE payloads; the hub
// relays each signal to every other member of the same room.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ClientMessage represents an inbound message from a WebSocket client.
type ClientMessage struct {
	Action string          `json:"action"`
	Room   string          `json:"room"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is what the hub relays to room members.
type ServerMessage struct {
	Action string          `json:"action"`
	Room   string          `json:"room"`
	From   string          `json:"from"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection.
type Client struct {
	ID    string
	Rooms []string
	Send  chan []byte
	hub   *Hub
	conn  Conn
}

// Hub tracks connected clients and their room membership. All operations
// are safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{} // room -> set of clients
	all   map[*Client]struct{}
}

// NewHub creates a new Hub ready to manage signaling clients.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		all:   make(map[*Client]struct{}),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[client] = struct{}{}
}

// Unregister removes a client from the hub and every room it joined, and
// closes the client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, room := range client.Rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Join adds the client to a room.
func (h *Hub) Join(client *Client, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	if _, already := h.rooms[room][client]; already {
		return
	}
	h.rooms[room][client] = struct{}{}
	client.Rooms = append(client.Rooms, room)
}

// Leave removes the client from a room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	remaining := make([]string, 0, len(client.Rooms))
	for _, r := range client.Rooms {
		if r != room {
			remaining = append(remaining, r)
		}
	}
	client.Rooms = remaining
}

// Relay sends a signal to every member of the room except the sender.
// Members whose buffers are full are skipped rather than blocking the hub.
func (h *Hub) Relay(sender *Client, room string, data json.RawMessage) {
	msg, err := json.Marshal(ServerMessage{
		Action: "signal",
		Room:   room,
		From:   sender.ID,
		Data:   data,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	// Only relay for rooms the sender actually joined.
	if _, member := members[sender]; !member {
		return
	}

	for client := range members {
		if client == sender {
			continue
		}
		select {
		case client.Send <- msg:
		default:
		}
	}
}

// ProcessMessage dispatches an inbound client message.
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "join-room":
		h.Join(client, msg.Room)
	case "leave-room":
		h.Leave(client, msg.Room)
	case "signal":
		h.Relay(client, msg.Room, msg.Data)
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// RoomCount returns the number of clients in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-WebSocket upgrades for the signaling endpoint.
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new Handler bound to the given Hub.
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// RegisterRoutes registers the signaling endpoint on the provided Echo group.
func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/signaling", wsh.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client with the hub, and starts read/write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	socket, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
		hub:  wsh.hub,
		conn: &gorillaConnAdapter{socket},
	}

	wsh.hub.Register(client)
	wsh.logger.Debug().Str("client_id", client.ID).Msg("signaling client connected")

	go wsh.writePump(client, socket)
	go wsh.readPump(client, socket)

	return nil
}

// readPump reads messages from the WebSocket connection and processes them.
func (wsh *Handler) readPump(client *Client, socket *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		socket.Close()
		wsh.logger.Debug().Str("client_id", client.ID).Msg("signaling client disconnected")
	}()

	for {
		_, message, err := socket.ReadMessage()
		if err != nil {
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		wsh.hub.ProcessMessage(client, msg)
	}
}

// writePump writes messages from the Send channel to the WebSocket connection.
func (wsh *Handler) writePump(client *Client, socket *gorillawebsocket.Conn) {
	defer socket.Close()

	for message := range client.Send {
		if err := socket.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
