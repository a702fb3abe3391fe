package routes

import (
	"investcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupCommonUtilsRoutes(r *gin.Engine) {
	currency := r.Group("/common_utils/currency")
	{
		currency.GET("/:code", handlers.GetCurrencySymbol)
	}

	// Live ledger feed for dashboards
	r.GET("/ws/ledger", handlers.ServeLedgerFeed)
}
