package handlers

import (
	"net/http"
	"strconv"
	"time"

	"investcontrol/internal/handlers/business"
	"investcontrol/internal/models"

	"github.com/gin-gonic/gin"
)

// ParticipantCreateRequest represents the request body for joining a project
type ParticipantCreateRequest struct {
	ProjectID           uint    `json:"project_id" binding:"required"`
	InvestorID          uint    `json:"investor_id" binding:"required"`
	Amount              float64 `json:"amount" binding:"required"`
	AgentCommissionRate float64 `json:"agent_commission_rate"`
}

// ParticipantUpdateRequest represents the PATCH body. A positive amount
// tops up the stake; action=close settles and deactivates it.
type ParticipantUpdateRequest struct {
	Action              string   `json:"action"`
	Amount              *float64 `json:"amount"`
	FinalPayout         float64  `json:"final_payout"`
	AgentCommissionRate *float64 `json:"agent_commission_rate"`
}

// CreateParticipant records an investor's contribution to a project.
// Posting the same pair again tops up the existing stake.
func CreateParticipant(c *gin.Context) {
	var request ParticipantCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	period := business.PeriodOf(time.Now())
	participant, err := business.AddContribution(db(c), request.ProjectID, request.InvestorID, request.Amount, request.AgentCommissionRate, period)
	if err != nil {
		abortWithLedgerError(c, err)
		return
	}

	emitLedgerEvent(business.LedgerEvent{
		Type:       business.EventContributionMade,
		ProjectID:  participant.ProjectID,
		InvestorID: participant.InvestorID,
		Month:      period,
		Amount:     business.Round2(request.Amount),
	})
	c.JSON(http.StatusCreated, participant)
}

// ListParticipants returns paginated participants
// Query parameters: page, page_size, order_type, project_id, investor_id, status
func ListParticipants(c *gin.Context) {
	page, pageSize, order := listParams(c)

	query := db(c).Model(&models.Participant{})
	if projectID := c.Query("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if investorID := c.Query("investor_id"); investorID != "" {
		query = query.Where("investor_id = ?", investorID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var participants []models.Participant
	if err := query.Order("id " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      participants,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetParticipant returns a specific participant by ID
func GetParticipant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var participant models.Participant
	if err := db(c).First(&participant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// UpdateParticipant handles stake top-ups, commission rate changes and
// closing out a participant
func UpdateParticipant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var request ParticipantUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var participant models.Participant
	if err := db(c).First(&participant, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	period := business.PeriodOf(time.Now())

	switch {
	case request.Action == "close":
		updated, err := business.CloseParticipant(db(c), participant.ID, request.FinalPayout, period)
		if err != nil {
			abortWithLedgerError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)

	case request.Amount != nil:
		rate := participant.AgentCommissionRate
		if request.AgentCommissionRate != nil {
			rate = *request.AgentCommissionRate
		}
		updated, err := business.AddContribution(db(c), participant.ProjectID, participant.InvestorID, *request.Amount, rate, period)
		if err != nil {
			abortWithLedgerError(c, err)
			return
		}
		emitLedgerEvent(business.LedgerEvent{
			Type:       business.EventContributionMade,
			ProjectID:  updated.ProjectID,
			InvestorID: updated.InvestorID,
			Month:      period,
			Amount:     business.Round2(*request.Amount),
		})
		c.JSON(http.StatusOK, updated)

	case request.AgentCommissionRate != nil:
		if err := db(c).Model(&participant).Update("agent_commission_rate", *request.AgentCommissionRate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, participant)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update: provide amount, agent_commission_rate or action=close"})
	}
}
