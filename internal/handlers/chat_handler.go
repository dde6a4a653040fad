package handlers

import (
	"astro-online/internal/models"
	"astro-online/internal/services"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

type openRoomRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
}

// OpenRoom resolves (or creates) the room between the caller and another
// participant.
func (h *ChatHandler) OpenRoom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request openRoomRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	participantID, err := parseObjectID(request.ParticipantID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid participant ID")
		return
	}

	room, err := h.chatService.GetOrCreateRoom(c.Request.Context(), userID, participantID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Room resolved", room)
}

// ListRooms returns the caller's chat rooms.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	rooms, total, err := h.chatService.ListRooms(c.Request.Context(), userID, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rooms fetched", rooms, listMeta(params, total, len(rooms)))
}

// History returns a room's message history.
func (h *ChatHandler) History(c *gin.Context) {
	roomID, ok := pathObjectID(c, "room_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	messages, total, err := h.chatService.History(c.Request.Context(), roomID, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Messages fetched", messages, listMeta(params, total, len(messages)))
}

// LastMessage returns the newest message in a room.
func (h *ChatHandler) LastMessage(c *gin.Context) {
	roomID, ok := pathObjectID(c, "room_id")
	if !ok {
		return
	}

	message, err := h.chatService.LastMessage(c.Request.Context(), roomID)
	if err != nil {
		if err == models.ErrNotFound {
			utils.SuccessResponse(c, "No messages yet", nil)
			return
		}
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Last message fetched", message)
}

// MarkRead flags the caller's unread messages in the room as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathObjectID(c, "room_id")
	if !ok {
		return
	}

	if err := h.chatService.MarkRead(c.Request.Context(), roomID, userID); err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Messages marked read", nil)
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage is the REST fallback for clients without a live socket.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	roomID, ok := pathObjectID(c, "room_id")
	if !ok {
		return
	}

	var request sendMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), roomID, userID, request.Content)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Message sent", message)
}
