package wallet

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWalletRoutes configures wallet and topup routes
func SetupWalletRoutes(rg *gin.RouterGroup, controller *Controller) {
	wallet := rg.Group("/wallet")
	wallet.Use(middleware.JWTAuth())
	{
		wallet.GET("/balance", controller.GetBalance) // GET /api/v1/wallet/balance
		wallet.GET("/ledger", controller.GetLedger)   // GET /api/v1/wallet/ledger
		wallet.POST("/topups", controller.RequestTopup)
		wallet.GET("/topups", controller.MyTopups)
	}

	manage := rg.Group("/manage/topups")
	manage.Use(middleware.JWTAuth(), middleware.RequireManager())
	{
		manage.GET("", controller.ListTopups)              // GET /api/v1/manage/topups?status=pending
		manage.POST("/:id/review", controller.ReviewTopup) // POST /api/v1/manage/topups/:id/review
	}

	manageWallet := rg.Group("/manage/wallet")
	manageWallet.Use(middleware.JWTAuth(), middleware.RequireManager())
	{
		manageWallet.GET("/ledger", controller.ManagerLedger) // GET /api/v1/manage/wallet/ledger?user_id=
	}
}
