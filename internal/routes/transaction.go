package routes

import (
	"investcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupTransactionRoutes sets up all routes related to ledger entries and statements
func SetupTransactionRoutes(r *gin.Engine) {
	transaction := r.Group("/transactions")
	{
		transaction.GET("", handlers.ListTransactions)
		transaction.GET("/:id", handlers.GetTransaction)
	}

	statement := r.Group("/statements")
	{
		statement.GET("", handlers.ListStatements)
	}
}
