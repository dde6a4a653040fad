package handlers

import (
	"time"

	"astro-online/internal/services"
	"astro-online/internal/utils"
	"astro-online/internal/validators"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService services.CustomerService
	userService     services.UserService
}

func NewCustomerHandler(customerService services.CustomerService, userService services.UserService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		userService:     userService,
	}
}

// Me returns the caller's birth profile, creating it on first access.
func (h *CustomerHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	customer, err := h.customerService.EnsureProfile(c.Request.Context(), user)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile fetched", customer)
}

type updateCustomerRequest struct {
	Name         *string    `json:"name"`
	ProfileImage *string    `json:"profile_image"`
	BirthDate    *time.Time `json:"birth_date" validate:"omitempty,past_date"`
	BirthTime    *string    `json:"birth_time" validate:"omitempty,birth_time"`
	BirthPlace   *string    `json:"birth_place"`
	Gender       *string    `json:"gender"`
	AddressLine1 *string    `json:"address_line1"`
	AddressLine2 *string    `json:"address_line2"`
	City         *string    `json:"city"`
	Pincode      *string    `json:"pincode"`
}

func (r *updateCustomerRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(key string, value interface{}, present bool) {
		if present {
			updates[key] = value
		}
	}
	set("name", r.Name, r.Name != nil)
	set("profile_image", r.ProfileImage, r.ProfileImage != nil)
	set("birth_date", r.BirthDate, r.BirthDate != nil)
	set("birth_time", r.BirthTime, r.BirthTime != nil)
	set("birth_place", r.BirthPlace, r.BirthPlace != nil)
	set("gender", r.Gender, r.Gender != nil)
	set("address_line1", r.AddressLine1, r.AddressLine1 != nil)
	set("address_line2", r.AddressLine2, r.AddressLine2 != nil)
	set("city", r.City, r.City != nil)
	set("pincode", r.Pincode, r.Pincode != nil)
	return updates
}

// UpdateMe updates the caller's birth profile. Only the fields present in
// the request are touched.
func (h *CustomerHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request updateCustomerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		fields := make(map[string]string, len(errs))
		for _, e := range errs {
			fields[e.Field] = e.Message
		}
		utils.ValidationErrorResponse(c, fields)
		return
	}

	if err := h.customerService.UpdateProfile(c.Request.Context(), userID, request.updates()); err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated", nil)
}

// Get returns a customer's birth profile so the astrologer can read the
// chart details of the person they are consulting.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetProfile(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile fetched", customer)
}
