package handlers

import (
	"astro-online/internal/models"
	"astro-online/internal/services"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandler(authService services.AuthService, userService services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

type requestOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP sends a sign-in code to the phone number.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var request requestOTPRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.authService.RequestOTP(c.Request.Context(), request.Phone); err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "OTP sent", nil)
}

type verifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// VerifyOTP exchanges the code for a token pair, registering new users.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var request verifyOTPRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	role := models.UserRole(request.Role)
	if role != "" && role != models.RoleCustomer && role != models.RoleAstrologer {
		utils.BadRequestResponse(c, "Invalid role")
		return
	}

	result, err := h.authService.VerifyOTP(c.Request.Context(), request.Phone, request.Code, request.Name, role)
	if err != nil {
		utils.ErrorResponse(c, 401, "OTP_VERIFICATION_FAILED", err.Error())
		return
	}

	utils.SuccessResponse(c, "Signed in", result)
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshToken issues a new token pair from a valid refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var request refreshTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), request.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return
	}

	utils.SuccessResponse(c, "Token refreshed", tokens)
}

type fcmTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateFCMToken stores the caller's push token.
func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request fcmTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.userService.UpdateFCMToken(c.Request.Context(), userID, request.Token); err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token updated", nil)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile fetched", user)
}
