package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly in production
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

// HandleRoomSocket upgrades a chat connection scoped to one room. The
// client is joined to the room before the pumps start so no broadcast
// slips past the registration.
func (h *Handler) HandleRoomSocket(c *gin.Context) {
	userID, role, ok := identityFromContext(c)
	if !ok {
		return
	}

	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room id required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userID, role)
	client.rooms[roomID] = true
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// HandleNotificationSocket upgrades a notification connection; the client
// only listens on their personal room.
func (h *Handler) HandleNotificationSocket(c *gin.Context) {
	userID, role, ok := identityFromContext(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, userID, role)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func identityFromContext(c *gin.Context) (primitive.ObjectID, string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return primitive.NilObjectID, "", false
	}

	role, exists := c.Get("user_role")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User role not found"})
		return primitive.NilObjectID, "", false
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return primitive.NilObjectID, "", false
	}

	roleStr, ok := role.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user role"})
		return primitive.NilObjectID, "", false
	}

	return userObjectID, roleStr, true
}
