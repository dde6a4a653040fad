package handlers

import (
	"astro-online/internal/models"
	"astro-online/internal/services"
	"astro-online/internal/utils"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetBalance returns the caller's wallet, creating it on first touch.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	role := models.UserRole(c.GetString("user_role"))
	wallet, err := h.walletService.EnsureWallet(c.Request.Context(), userID, role)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet fetched", wallet)
}

type topUpRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// InitiateTopUp creates a payment gateway order for a wallet top-up.
func (h *WalletHandler) InitiateTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request topUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	order, err := h.walletService.InitiateTopUp(c.Request.Context(), userID, request.Amount)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, "Top-up order created", order)
}

type confirmTopUpRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature"`
}

// ConfirmTopUp verifies the gateway payment and credits the wallet.
func (h *WalletHandler) ConfirmTopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request confirmTopUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	txn, err := h.walletService.ConfirmTopUp(c.Request.Context(), userID,
		request.OrderID, request.PaymentID, request.Signature)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Wallet topped up", txn)
}

type sendMoneyRequest struct {
	ToUserID string  `json:"to_user_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// SendMoney transfers funds to another customer's wallet.
func (h *WalletHandler) SendMoney(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request sendMoneyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	toUserID, err := parseObjectID(request.ToUserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid recipient ID")
		return
	}

	txn, err := h.walletService.SendMoney(c.Request.Context(), userID, toUserID, request.Amount)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Money sent", txn)
}

// ListTransactions returns the caller's ledger movements.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	txns, total, err := h.walletService.ListTransactions(c.Request.Context(), userID, params)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Transactions fetched", txns, listMeta(params, total, len(txns)))
}

// ListSessionTransactions returns the movements a session produced.
func (h *WalletHandler) ListSessionTransactions(c *gin.Context) {
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	txns, err := h.walletService.ListSessionTransactions(c.Request.Context(), sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Session transactions fetched", txns)
}
