package handlers

import (
	"net/http"

	"investcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListAgentTransactions returns paginated per-month commission records
// Query parameters: page, page_size, order_type, agent_id, project_id,
// investor_id, month
func ListAgentTransactions(c *gin.Context) {
	page, pageSize, order := listParams(c)

	query := db(c).Model(&models.AgentTransaction{})
	if agentID := c.Query("agent_id"); agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if investorID := c.Query("investor_id"); investorID != "" {
		query = query.Where("investor_id = ?", investorID)
	}
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var transactions []models.AgentTransaction
	err := query.
		Preload("Logs", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		Order("id " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&transactions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      transactions,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListAgentCommissions returns lifetime commission totals per
// (agent, investor) pair
func ListAgentCommissions(c *gin.Context) {
	query := db(c).Model(&models.AgentCommission{})
	if agentID := c.Query("agent_id"); agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}
	if investorID := c.Query("investor_id"); investorID != "" {
		query = query.Where("investor_id = ?", investorID)
	}

	var commissions []models.AgentCommission
	if err := query.Order("id DESC").Find(&commissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": commissions})
}
