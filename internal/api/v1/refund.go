package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/service"
)

type RefundHandler struct {
	refundService service.RefundService
	log           *logger.Logger
}

func NewRefundHandler(refundService service.RefundService, log *logger.Logger) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
		log:           log,
	}
}

// RefundOrder reconciles and refunds everything paid for an order
func (h *RefundHandler) RefundOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.Error(ierr.NewError("order id is required").
			WithHint("Order id is required").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.refundService.RefundOrder(c.Request.Context(), orderID)
	if err != nil {
		h.log.Errorw("failed to refund order", "error", err, "order_id", orderID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RefundPackageOrder reconciles and refunds everything paid for a package order
func (h *RefundHandler) RefundPackageOrder(c *gin.Context) {
	packageOrderID := c.Param("id")
	if packageOrderID == "" {
		c.Error(ierr.NewError("package order id is required").
			WithHint("Package order id is required").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.refundService.RefundPackageOrder(c.Request.Context(), packageOrderID)
	if err != nil {
		h.log.Errorw("failed to refund package order", "error", err, "package_order_id", packageOrderID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
