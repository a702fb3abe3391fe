package handlers

import (
	"net/http"
	"strconv"

	"investcontrol/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListTransactions returns paginated ledger entries with their log
// sub-entries and payment logs preloaded
// Query parameters: page, page_size, order_type, project_id, investor_id,
// month, scope=global (restrict to project-level entries), status
func ListTransactions(c *gin.Context) {
	page, pageSize, order := listParams(c)

	query := db(c).Model(&models.LedgerEntry{})
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if investorID := c.Query("investor_id"); investorID != "" {
		query = query.Where("investor_id = ?", investorID)
	}
	if c.Query("scope") == "global" {
		query = query.Where("investor_id IS NULL")
	}
	if month := c.Query("month"); month != "" {
		query = query.Where("month = ?", month)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var entries []models.LedgerEntry
	err := query.
		Preload("Logs", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		Preload("PaymentLogs").
		Order("id " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      entries,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTransaction returns a single ledger entry with its full audit trail
func GetTransaction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var entry models.LedgerEntry
	err = db(c).
		Preload("Logs", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq ASC") }).
		Preload("PaymentLogs").
		First(&entry, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListStatements returns the per-month rollups for a project
func ListStatements(c *gin.Context) {
	query := db(c).Model(&models.ProjectStatement{})
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var statements []models.ProjectStatement
	if err := query.Order("month DESC").Find(&statements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": statements})
}
