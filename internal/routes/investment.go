package routes

import (
	"investcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupInvestmentRoutes sets up all routes related to investment project management
func SetupInvestmentRoutes(r *gin.Engine) {
	investment := r.Group("/investments")
	{
		investment.GET("", handlers.ListInvestments)
		investment.GET("/:id", handlers.GetInvestment)
		investment.POST("", handlers.CreateInvestment)
		investment.PATCH("/:id", handlers.UpdateInvestment)
		investment.POST("/:id/installment", handlers.AddInstallment)
	}
}
