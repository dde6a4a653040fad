package handlers

import (
	"astro-online/internal/models"
	"astro-online/internal/services"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService    services.SessionService
	astrologerService services.AstrologerService
}

func NewSessionHandler(sessionService services.SessionService, astrologerService services.AstrologerService) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		astrologerService: astrologerService,
	}
}

type startSessionRequest struct {
	AstrologerID string `json:"astrologer_id" binding:"required"`
	SessionType  string `json:"session_type" binding:"required"`
}

// StartSession begins an instant consultation.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request startSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	astrologerID, err := parseObjectID(request.AstrologerID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid astrologer ID")
		return
	}

	sessionType := models.SessionType(request.SessionType)
	if !sessionType.Valid() {
		utils.BadRequestResponse(c, "Invalid session type")
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), userID, astrologerID, sessionType)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Session started", session)
}

// RequestSession files a pending consultation request.
func (h *SessionHandler) RequestSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request startSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	astrologerID, err := parseObjectID(request.AstrologerID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid astrologer ID")
		return
	}

	sessionType := models.SessionType(request.SessionType)
	if !sessionType.Valid() {
		utils.BadRequestResponse(c, "Invalid session type")
		return
	}

	session, err := h.sessionService.RequestSession(c.Request.Context(), userID, astrologerID, sessionType)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Session requested", session)
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// Respond lets the astrologer accept or decline a pending request.
func (h *SessionHandler) Respond(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var request respondRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	astrologer, err := h.astrologerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	session, err := h.sessionService.RespondToRequest(c.Request.Context(), sessionID, astrologer.ID, request.Accept)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Response recorded", session)
}

// StartAccepted promotes an accepted request to an ongoing session.
func (h *SessionHandler) StartAccepted(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.StartAccepted(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session started", session)
}

// EndSession finishes the consultation and settles the charge.
func (h *SessionHandler) EndSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.sessionService.EndSession(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session ended", result)
}

// Cancel withdraws a pending or accepted request.
func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.CancelRequest(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session cancelled", session)
}

// GetSession returns a single session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session fetched", session)
}

// ListMine returns the caller's session history, customer side.
func (h *SessionHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	sessions, total, err := h.sessionService.ListCustomerSessions(c.Request.Context(), userID, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Sessions fetched", sessions, listMeta(params, total, len(sessions)))
}

// ListForAstrologer returns the astrologer's session history.
func (h *SessionHandler) ListForAstrologer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	astrologer, err := h.astrologerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	sessions, total, err := h.sessionService.ListAstrologerSessions(c.Request.Context(), astrologer.ID, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Sessions fetched", sessions, listMeta(params, total, len(sessions)))
}

// ListPending returns the astrologer's open requests.
func (h *SessionHandler) ListPending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	astrologer, err := h.astrologerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sessions, err := h.sessionService.ListPendingRequests(c.Request.Context(), astrologer.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Pending requests fetched", sessions)
}
