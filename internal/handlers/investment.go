package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"investcontrol/internal/handlers/business"
	"investcontrol/internal/models"
	dbconfig "investcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InvestmentCreateRequest represents the request body for creating a project
type InvestmentCreateRequest struct {
	Title           string          `json:"title" binding:"required"`
	Details         string          `json:"details"`
	Image           string          `json:"image"`
	Documents       json.RawMessage `json:"documents"`
	CurrencyType    string          `json:"currency_type"`
	ProjectAmount   float64         `json:"project_amount" binding:"required"`
	AdminCostRate   float64         `json:"admin_cost_rate"`
	ProjectDuration int             `json:"project_duration"`
	ShareBasis      string          `json:"share_basis"`
}

// InvestmentUpdateRequest represents the PATCH body. Exactly one of the
// three mutation kinds applies per request: a detail patch
// (action=updateDetail), a capital movement (amount_required), or a sale
// declaration (sale_amount).
type InvestmentUpdateRequest struct {
	Action            string          `json:"action"`
	Title             *string         `json:"title"`
	Details           *string         `json:"details"`
	Image             *string         `json:"image"`
	Documents         json.RawMessage `json:"documents"`
	AdminCostRate     *float64        `json:"admin_cost_rate"`
	Status            *string         `json:"status"`
	ProjectAmount     *float64        `json:"project_amount"`
	AmountRequired    *float64        `json:"amount_required"`
	IsCapitalRaise    bool            `json:"is_capital_raise"`
	SaleAmount        *float64        `json:"sale_amount"`
	DeductOutstanding *bool           `json:"deduct_outstanding"`
}

// CreateInvestment creates a new pooled investment project
func CreateInvestment(c *gin.Context) {
	var request InvestmentCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !business.IsFiniteAmount(request.ProjectAmount) || request.ProjectAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_amount must be a positive number"})
		return
	}
	if request.CurrencyType == "" {
		request.CurrencyType = "GBP"
	}
	if request.ShareBasis == "" {
		request.ShareBasis = models.ShareBasisCapital
	}
	if request.ShareBasis != models.ShareBasisCapital && request.ShareBasis != models.ShareBasisPaidIn {
		c.JSON(http.StatusBadRequest, gin.H{"error": "share_basis must be 'capital' or 'paid_in'"})
		return
	}

	project := models.Project{
		Title:           request.Title,
		Details:         request.Details,
		Image:           request.Image,
		Documents:       request.Documents,
		CurrencyType:    strings.ToUpper(request.CurrencyType),
		ProjectAmount:   business.Round2(request.ProjectAmount),
		AdminCostRate:   request.AdminCostRate,
		ProjectDuration: request.ProjectDuration,
		ShareBasis:      request.ShareBasis,
		Status:          "active",
	}

	if err := db(c).Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, project)
}

// ListInvestments returns paginated projects
// Query parameters: page (default: 1), page_size (default: 10, max: 100),
// order_type (asc/desc, default desc), status
func ListInvestments(c *gin.Context) {
	page, pageSize, order := listParams(c)

	query := db(c).Model(&models.Project{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var projects []models.Project
	if err := query.Order("id " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      projects,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetInvestment returns a specific project by ID
func GetInvestment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var project models.Project
	if err := db(c).First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateInvestment dispatches the PATCH body to the right ledger
// operation. The calendar period is derived once here and handed down;
// the core never reads the clock.
func UpdateInvestment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request InvestmentUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	projectID := uint(id)
	period := business.PeriodOf(time.Now())

	switch {
	case request.Action == "updateDetail":
		project, err := business.UpdateDetails(db(c), projectID, business.UpdateDetailsInput{
			Title:         request.Title,
			Details:       request.Details,
			Image:         request.Image,
			Documents:     request.Documents,
			AdminCostRate: request.AdminCostRate,
			ProjectAmount: request.ProjectAmount,
			Status:        request.Status,
		})
		if err != nil {
			abortWithLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)

	case request.SaleAmount != nil:
		deduct := true
		if request.DeductOutstanding != nil {
			deduct = *request.DeductOutstanding
		}
		project, err := business.DeclareSale(db(c), projectID, *request.SaleAmount, deduct, period)
		if err != nil {
			abortWithLedgerError(c, err)
			return
		}
		emitLedgerEvent(business.LedgerEvent{
			Type:      business.EventSaleDeclared,
			ProjectID: project.ID,
			Month:     period,
			Amount:    project.SaleAmount,
			Currency:  project.CurrencyType,
		})
		c.JSON(http.StatusOK, project)

	case request.AmountRequired != nil:
		project, err := business.RaiseCapital(db(c), projectID, *request.AmountRequired, request.IsCapitalRaise, period)
		if err != nil {
			abortWithLedgerError(c, err)
			return
		}
		if request.IsCapitalRaise {
			emitLedgerEvent(business.LedgerEvent{
				Type:      business.EventCapitalRaised,
				ProjectID: project.ID,
				Month:     period,
				Amount:    *request.AmountRequired,
				Currency:  project.CurrencyType,
			})
		}
		c.JSON(http.StatusOK, project)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update: provide action=updateDetail, amount_required or sale_amount"})
	}
}

// InstallmentRequest represents the request body for recording an installment
type InstallmentRequest struct {
	ParticipantID uint    `json:"participant_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}

// AddInstallment records a partial payment toward a participant's
// committed amount
func AddInstallment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request InstallmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	period := business.PeriodOf(time.Now())
	participant, err := business.RecordInstallment(db(c), uint(id), request.ParticipantID, request.Amount, period)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	emitLedgerEvent(business.LedgerEvent{
		Type:       business.EventInstallmentPaid,
		ProjectID:  participant.ProjectID,
		InvestorID: participant.InvestorID,
		Month:      period,
		Amount:     business.Round2(request.Amount),
	})
	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

// db returns the request-scoped database handle so in-flight cancellation
// aborts the unit of work cleanly.
func db(c *gin.Context) *gorm.DB {
	return dbconfig.DB.WithContext(c.Request.Context())
}

// listParams parses the shared pagination query parameters
func listParams(c *gin.Context) (page, pageSize int, order string) {
	page = 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize = 10
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= 100 {
			pageSize = parsed
		}
	}

	order = "DESC"
	if c.Query("order_type") == "asc" {
		order = "ASC"
	}
	return page, pageSize, order
}

// abortWithLedgerError maps the core failure kinds onto HTTP statuses
func abortWithLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, business.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrPaymentExceedsBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrConflictRetryable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
