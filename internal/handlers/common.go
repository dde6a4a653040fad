package handlers

import (
	"net/http"

	"astro-online/internal/middleware"
	"astro-online/internal/models"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondDomainError maps ledger and lifecycle errors onto HTTP statuses.
// Rejections the caller can act on (busy astrologer, empty wallet, wrong
// state) are all 400s; only a missing resource is a 404.
func respondDomainError(c *gin.Context, err error) {
	switch err {
	case models.ErrNotFound:
		utils.NotFoundResponse(c, "resource")
	case models.ErrInvalidState, models.ErrAlreadyResponded:
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_STATE", err.Error())
	case models.ErrAstrologerBusy, models.ErrAstrologerOffline:
		utils.ErrorResponse(c, http.StatusBadRequest, "ASTROLOGER_UNAVAILABLE", err.Error())
	case models.ErrInsufficientFunds, models.ErrWalletInactive:
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_FUNDS", err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}

// currentUserID reads the authenticated user id or writes a 401.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
	}
	return id, ok
}

func parseObjectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// pathObjectID parses an object id path parameter or writes a 400.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func listMeta(params *utils.PaginationParams, total int64, count int) *utils.Meta {
	return &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      count,
	}
}
