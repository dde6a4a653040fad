package handlers

import (
	"astro-online/internal/models"
	"astro-online/internal/services"
	"astro-online/internal/utils"
	"astro-online/internal/validators"

	"github.com/gin-gonic/gin"
)

type AstrologerHandler struct {
	astrologerService services.AstrologerService
	availability      services.AvailabilityService
}

func NewAstrologerHandler(astrologerService services.AstrologerService, availability services.AvailabilityService) *AstrologerHandler {
	return &AstrologerHandler{
		astrologerService: astrologerService,
		availability:      availability,
	}
}

type registerAstrologerRequest struct {
	Name            string                    `json:"name" binding:"required"`
	Phone           string                    `json:"phone" binding:"required"`
	CountryCode     string                    `json:"country_code"`
	Bio             string                    `json:"bio"`
	Category        string                    `json:"category"`
	PrimarySkill    string                    `json:"primary_skill"`
	Languages       []string                  `json:"languages"`
	ExperienceYears int                       `json:"experience_years"`
	ChatCharge      float64                   `json:"chat_charge"`
	AudioCallCharge float64                   `json:"audio_call_charge"`
	VideoCallCharge float64                   `json:"video_call_charge"`
	Availability    []models.AvailabilitySlot `json:"availability"`
}

// Register creates the astrologer profile for the authenticated user.
func (h *AstrologerHandler) Register(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request registerAstrologerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	astrologer := &models.Astrologer{
		UserID:          userID,
		Name:            request.Name,
		Phone:           utils.NormalizePhone(request.Phone),
		CountryCode:     request.CountryCode,
		Bio:             request.Bio,
		Category:        request.Category,
		PrimarySkill:    request.PrimarySkill,
		Languages:       request.Languages,
		ExperienceYears: request.ExperienceYears,
		ChatCharge:      request.ChatCharge,
		AudioCallCharge: request.AudioCallCharge,
		VideoCallCharge: request.VideoCallCharge,
		Availability:    request.Availability,
	}

	if errs := validators.ValidateStruct(astrologer); len(errs) > 0 {
		fields := make(map[string]string, len(errs))
		for _, e := range errs {
			fields[e.Field] = e.Message
		}
		utils.ValidationErrorResponse(c, fields)
		return
	}

	created, err := h.astrologerService.Register(c.Request.Context(), astrologer)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Astrologer registered", created)
}

// Get returns one astrologer profile.
func (h *AstrologerHandler) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	astrologer, err := h.astrologerService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Astrologer fetched", astrologer)
}

// List returns active astrologers, optionally filtered by category.
func (h *AstrologerHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var (
		astrologers []*models.Astrologer
		total       int64
		err         error
	)
	if category := c.Query("category"); category != "" {
		astrologers, total, err = h.astrologerService.ListByCategory(c.Request.Context(), category, params)
	} else {
		astrologers, total, err = h.astrologerService.List(c.Request.Context(), params)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Astrologers fetched", astrologers, listMeta(params, total, len(astrologers)))
}

// ListOnline returns astrologers currently accepting consultations.
func (h *AstrologerHandler) ListOnline(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	astrologers, total, err := h.availability.ListOnline(c.Request.Context(), params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Online astrologers fetched", astrologers, listMeta(params, total, len(astrologers)))
}

// UpdateProfile patches the caller's astrologer profile.
func (h *AstrologerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	astrologer, err := h.astrologerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := h.astrologerService.UpdateProfile(c.Request.Context(), astrologer.ID, updates); err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated", nil)
}

// GoOnline marks the caller available for consultations.
func (h *AstrologerHandler) GoOnline(c *gin.Context) {
	h.setPresence(c, true)
}

// GoOffline marks the caller unavailable.
func (h *AstrologerHandler) GoOffline(c *gin.Context) {
	h.setPresence(c, false)
}

func (h *AstrologerHandler) setPresence(c *gin.Context, online bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	astrologer, err := h.astrologerService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if online {
		err = h.availability.SetOnline(c.Request.Context(), astrologer.ID)
	} else {
		err = h.availability.SetOffline(c.Request.Context(), astrologer.ID)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	message := "Astrologer offline"
	if online {
		message = "Astrologer online"
	}
	utils.SuccessResponse(c, message, nil)
}
