package handlers

import (
	"net/http"

	"investcontrol/pkg/currency"

	"github.com/gin-gonic/gin"
)

// GetCurrencySymbol resolves an ISO currency code to its display symbol.
// Unknown codes fall back to the code itself rather than failing.
func GetCurrencySymbol(c *gin.Context) {
	code := c.Param("code")
	c.JSON(http.StatusOK, gin.H{
		"code":   code,
		"symbol": currency.Symbol(code),
	})
}
