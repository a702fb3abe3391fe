package routes

import (
	"investcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAgentRoutes sets up all routes related to agent commission tracking
func SetupAgentRoutes(r *gin.Engine) {
	agentTransaction := r.Group("/agent-transactions")
	{
		agentTransaction.GET("", handlers.ListAgentTransactions)
	}

	agentCommission := r.Group("/agent-commissions")
	{
		agentCommission.GET("", handlers.ListAgentCommissions)
	}
}
