package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/mealcart/mealcart/internal/api/v1"
	"github.com/mealcart/mealcart/internal/rest/middleware"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Wallet  *v1.WalletHandler
	Webhook *v1.WebhookHandler
	Refund  *v1.RefundHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Wallet routes
	wallets := router.Group("/wallets")
	{
		wallets.POST("/credit", handlers.Wallet.CreditWallet)
		wallets.POST("/debit", handlers.Wallet.DebitWallet)
		wallets.POST("/funding", handlers.Wallet.InitializeFunding)
		wallets.GET("/:id/transactions", handlers.Wallet.ListTransactions)
	}

	users := router.Group("/users")
	{
		users.GET("/:id/wallet", handlers.Wallet.GetWallet)
	}

	// Gateway webhook routes
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/gateway", handlers.Webhook.HandleGatewayEvent)
	}

	// Refund routes
	orders := router.Group("/orders")
	{
		orders.POST("/:id/refund", handlers.Refund.RefundOrder)
	}
	packageOrders := router.Group("/package-orders")
	{
		packageOrders.POST("/:id/refund", handlers.Refund.RefundPackageOrder)
	}
}
