package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/gofiber/websocket/v2"

	"ripple/internal/observability"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

// EventNewMessage is the event type delivered when a conversation
// receives a message.
const EventNewMessage = "newMessage"

// Event is the frame format pushed to websocket clients.
type Event struct {
	Type           string      `json:"type"`
	ConversationID uint        `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload"`
}

// Hub tracks websocket clients and the conversation rooms they have
// joined. Fan-out is room-keyed: a message published for conversation N
// reaches every client of every user currently in room N.
type Hub struct {
	mu sync.RWMutex

	// userID -> active clients (one user may have several devices)
	userConns map[uint]map[*Client]struct{}

	// conversationID -> member userIDs
	rooms map[uint]map[uint]struct{}

	// userID -> conversationIDs joined, for disconnect cleanup
	userRooms map[uint]map[uint]struct{}

	totalConns int
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		userConns: make(map[uint]map[*Client]struct{}),
		rooms:     make(map[uint]map[uint]struct{}),
		userRooms: make(map[uint]map[uint]struct{}),
	}
}

// Register adds a websocket connection for a user, enforcing per-user
// and global connection limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	clients, ok := h.userConns[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.userConns[userID] = clients
	}
	if len(clients) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := newClient(h, conn, userID)
	clients[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()

	return client, nil
}

// Unregister removes a client. When the user's last connection goes
// away their room memberships are dropped too.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()

	if len(clients) > 0 {
		return
	}
	delete(h.userConns, client.UserID)

	for convID := range h.userRooms[client.UserID] {
		h.removeFromRoomLocked(convID, client.UserID)
	}
	delete(h.userRooms, client.UserID)
}

// JoinRoom subscribes a connected user to a conversation's events.
// Membership checks happen before this is called.
func (h *Hub) JoinRoom(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userConns[userID]; !ok {
		slog.Debug("join ignored for disconnected user", "user_id", userID, "conversation_id", conversationID)
		return
	}

	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[uint]struct{})
	}
	h.rooms[conversationID][userID] = struct{}{}

	if h.userRooms[userID] == nil {
		h.userRooms[userID] = make(map[uint]struct{})
	}
	h.userRooms[userID][conversationID] = struct{}{}

	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(conversationID)).
		Set(float64(len(h.rooms[conversationID])))
}

// LeaveRoom unsubscribes a user from a conversation's events.
func (h *Hub) LeaveRoom(userID, conversationID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(conversationID, userID)
	if rooms, ok := h.userRooms[userID]; ok {
		delete(rooms, conversationID)
	}
}

func (h *Hub) removeFromRoomLocked(conversationID, userID uint) {
	members, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(h.rooms, conversationID)
	}
	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(conversationID)).
		Set(float64(len(members)))
}

// RoomMembers returns the userIDs currently joined to a conversation.
func (h *Hub) RoomMembers(conversationID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[conversationID]
	out := make([]uint, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// BroadcastToRoom fans an event out to every client of every user in
// the conversation's room.
func (h *Hub) BroadcastToRoom(conversationID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[conversationID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal room event", "conversation_id", conversationID, "error", err)
		return
	}

	for userID := range members {
		for client := range h.userConns[userID] {
			client.TrySend(data)
		}
	}
	observability.MessageThroughput.WithLabelValues(roomLabel(conversationID), event.Type).Inc()
}

// StartWiring subscribes the hub to the notifier's conversation
// channels so messages published on any instance reach local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartConversationSubscriber(ctx, func(conversationID uint, payload string) {
		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			slog.Warn("dropping malformed conversation event", "conversation_id", conversationID, "error", err)
			return
		}
		if event.Type == "" {
			event.Type = EventNewMessage
		}
		event.ConversationID = conversationID
		h.BroadcastToRoom(conversationID, event)
	})
}

// Shutdown closes every websocket connection and clears hub state.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				slog.Warn("failed to write close message", "user_id", userID, "error", err)
			}
			if err := client.Conn.Close(); err != nil {
				slog.Warn("failed to close websocket", "user_id", userID, "error", err)
			}
		}
	}

	h.userConns = make(map[uint]map[*Client]struct{})
	h.rooms = make(map[uint]map[uint]struct{})
	h.userRooms = make(map[uint]map[uint]struct{})
	h.totalConns = 0

	return nil
}

func roomLabel(conversationID uint) string {
	return strconv.FormatUint(uint64(conversationID), 10)
}
