package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcart/mealcart/internal/api/dto"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/service"
	"github.com/mealcart/mealcart/internal/types"
)

type WalletHandler struct {
	walletService service.WalletService
	log           *logger.Logger
}

func NewWalletHandler(walletService service.WalletService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		log:           log,
	}
}

// GetWallet returns the user's wallet, creating it on first access
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.Error(ierr.NewError("user id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation))
		return
	}

	w, err := h.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorw("failed to get wallet", "error", err, "user_id", userID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWalletResponse(w))
}

// CreditWallet applies an idempotent credit to the user's wallet
func (h *WalletHandler) CreditWallet(c *gin.Context) {
	var req dto.WalletOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.walletService.CreditWallet(c.Request.Context(), req.ToOperation(types.TransactionTypeCredit))
	if err != nil {
		h.log.Errorw("failed to credit wallet", "error", err, "reference", req.Reference)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWalletOperationResponse(result))
}

// DebitWallet applies an idempotent debit to the user's wallet
func (h *WalletHandler) DebitWallet(c *gin.Context) {
	var req dto.WalletOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.walletService.DebitWallet(c.Request.Context(), req.ToOperation(types.TransactionTypeDebit))
	if err != nil {
		h.log.Errorw("failed to debit wallet", "error", err, "reference", req.Reference)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWalletOperationResponse(result))
}

// ListTransactions returns a page of the wallet's ledger rows
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	walletID := c.Param("id")
	if walletID == "" {
		c.Error(ierr.NewError("wallet id is required").
			WithHint("Wallet id is required").
			Mark(ierr.ErrValidation))
		return
	}

	var filter types.WalletTransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	filter.WalletID = walletID

	response, err := h.walletService.ListTransactions(c.Request.Context(), &filter)
	if err != nil {
		h.log.Errorw("failed to list transactions", "error", err, "wallet_id", walletID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// InitializeFunding records a pending external top-up intent
func (h *WalletHandler) InitializeFunding(c *gin.Context) {
	var req dto.InitializeFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.walletService.InitializeFunding(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to initialize funding", "error", err, "provider_ref", req.ProviderRef)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
