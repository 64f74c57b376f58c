package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealcart/mealcart/internal/api/dto"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/service"
)

// WebhookHandler receives payment gateway callbacks. The gateway
// delivers at-least-once, so replays must answer 200 without a second
// ledger effect.
type WebhookHandler struct {
	walletService service.WalletService
	log           *logger.Logger
}

func NewWebhookHandler(walletService service.WalletService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		walletService: walletService,
		log:           log,
	}
}

// HandleGatewayEvent processes a funding callback from the payment gateway
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	var req dto.GatewayWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid webhook payload").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()

	switch req.Event {
	case dto.GatewayEventPaymentSucceeded:
		response, err := h.walletService.CompleteFundingWithRetry(ctx, req.ProviderRef, req.PaidAt)
		if err != nil {
			h.log.Errorw("failed to process gateway webhook",
				"error", err,
				"provider_ref", req.ProviderRef,
				"event", req.Event,
			)
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, response)

	case dto.GatewayEventPaymentFailed:
		response, err := h.walletService.FailFunding(ctx, req.ProviderRef)
		if err != nil {
			h.log.Errorw("failed to process gateway webhook",
				"error", err,
				"provider_ref", req.ProviderRef,
				"event", req.Event,
			)
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}
