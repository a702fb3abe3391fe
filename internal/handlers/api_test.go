package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"investcontrol/internal/models"
	"investcontrol/internal/routes"
	dbconfig "investcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var apiDBSeq int64

// setupTestAPI wires the real router against a fresh in-memory database.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", atomic.AddInt64(&apiDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Project{},
		&models.ProjectStatement{},
		&models.Participant{},
		&models.UserAccount{},
		&models.LedgerEntry{},
		&models.LedgerLog{},
		&models.PaymentLog{},
		&models.AgentTransaction{},
		&models.AgentCommission{},
	))

	dbconfig.DB = db
	return routes.SetupRouter(), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInvestmentAPI(t *testing.T) {
	r, db := setupTestAPI(t)

	investor := models.UserAccount{Name: "Alice", Role: "investor"}
	require.NoError(t, db.Create(&investor).Error)

	var projectID uint

	t.Run("Create Investment", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/investments", gin.H{
			"title":           "Harbour View Development",
			"project_amount":  10000,
			"admin_cost_rate": 10,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var project models.Project
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
		assert.Equal(t, "GBP", project.CurrencyType)
		assert.Equal(t, "active", project.Status)
		projectID = project.ID
	})

	t.Run("Create Rejects Zero Amount", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/investments", gin.H{
			"title":          "Broken",
			"project_amount": 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List Investments", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/investments?page=1&page_size=10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data  []models.Project `json:"data"`
			Total int64            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.EqualValues(t, 1, response.Total)
		require.Len(t, response.Data, 1)
	})

	t.Run("Get Investment", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/investments/%d", projectID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Get Non-existent Investment", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/investments/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Join Project", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/participants", gin.H{
			"project_id":  projectID,
			"investor_id": investor.ID,
			"amount":      6000,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var p models.Participant
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, 60.0, p.ProjectShare)
	})

	t.Run("Join Over Capacity", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/participants", gin.H{
			"project_id":  projectID,
			"investor_id": investor.ID,
			"amount":      5000,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response["error"], "capacity exceeded")
	})

	t.Run("Declare Sale", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/investments/%d", projectID), gin.H{
			"sale_amount": 15000,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var project models.Project
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
		assert.Equal(t, 15000.0, project.SaleAmount)

		var p models.Participant
		require.NoError(t, db.Where("project_id = ? AND investor_id = ?", projectID, investor.ID).First(&p).Error)
		assert.Equal(t, 8700.0, p.TotalDue) // 6000 + 60% of 4500 net
	})

	t.Run("Update Details", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/investments/%d", projectID), gin.H{
			"action": "updateDetail",
			"title":  "Harbour View Phase II",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var project models.Project
		require.NoError(t, db.First(&project, projectID).Error)
		assert.Equal(t, "Harbour View Phase II", project.Title)
	})

	t.Run("Patch With Nothing To Do", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/investments/%d", projectID), gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Record Installment", func(t *testing.T) {
		var p models.Participant
		require.NoError(t, db.Where("project_id = ? AND investor_id = ?", projectID, investor.ID).First(&p).Error)

		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/investments/%d/installment", projectID), gin.H{
			"participant_id": p.ID,
			"amount":         2000,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var project models.Project
		require.NoError(t, db.First(&project, projectID).Error)
		assert.Equal(t, 2000.0, project.TotalAmountPaid)
	})

	t.Run("Installment Over Balance", func(t *testing.T) {
		var p models.Participant
		require.NoError(t, db.Where("project_id = ? AND investor_id = ?", projectID, investor.ID).First(&p).Error)

		w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/investments/%d/installment", projectID), gin.H{
			"participant_id": p.ID,
			"amount":         999999,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("List Transactions", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/transactions?project_id=%d", projectID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data  []models.LedgerEntry `json:"data"`
			Total int64                `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.EqualValues(t, 2, response.Total) // global + investor entry
	})

	t.Run("List Global Transactions Only", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/transactions?project_id=%d&scope=global", projectID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []models.LedgerEntry `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Nil(t, response.Data[0].InvestorID)
		assert.Len(t, response.Data[0].Logs, 4) // sale chain preloaded in order
	})
}

func TestParticipantAPI(t *testing.T) {
	r, db := setupTestAPI(t)

	project := models.Project{Title: "Test Pool", CurrencyType: "GBP", ProjectAmount: 10000, ShareBasis: models.ShareBasisCapital, Status: "active"}
	require.NoError(t, db.Create(&project).Error)
	investor := models.UserAccount{Name: "Bob", Role: "investor"}
	require.NoError(t, db.Create(&investor).Error)

	w := doJSON(t, r, http.MethodPost, "/participants", gin.H{
		"project_id":  project.ID,
		"investor_id": investor.ID,
		"amount":      4000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Participant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("Top Up Via Patch", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/participants/%d", created.ID), gin.H{
			"amount": 1000,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var p models.Participant
		require.NoError(t, db.First(&p, created.ID).Error)
		assert.Equal(t, 5000.0, p.Amount)
	})

	t.Run("Close Via Patch", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/participants/%d", created.ID), gin.H{
			"action":       "close",
			"final_payout": 5000,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var p models.Participant
		require.NoError(t, db.First(&p, created.ID).Error)
		assert.Equal(t, "block", p.Status)
		assert.Equal(t, 0.0, p.Amount)
	})

	t.Run("List Filtered By Status", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/participants?project_id=%d&status=block", project.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.EqualValues(t, 1, response.Total)
	})
}

func TestAgentAPI(t *testing.T) {
	r, db := setupTestAPI(t)

	project := models.Project{Title: "Agent Pool", CurrencyType: "GBP", ProjectAmount: 10000, AdminCostRate: 10, ShareBasis: models.ShareBasisCapital, Status: "active"}
	require.NoError(t, db.Create(&project).Error)
	agent := models.UserAccount{Name: "Grace", Role: "agent"}
	require.NoError(t, db.Create(&agent).Error)
	investor := models.UserAccount{Name: "Alice", Role: "investor", AgentID: &agent.ID}
	require.NoError(t, db.Create(&investor).Error)

	w := doJSON(t, r, http.MethodPost, "/participants", gin.H{
		"project_id":            project.ID,
		"investor_id":           investor.ID,
		"amount":                10000,
		"agent_commission_rate": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/investments/%d", project.ID), gin.H{
		"sale_amount": 15000,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("List Agent Transactions", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/agent-transactions?agent_id=%d", agent.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []models.AgentTransaction `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		// net 4500 at 100% share, 10% commission
		assert.Equal(t, 450.0, response.Data[0].CommissionDue)
		require.Len(t, response.Data[0].Logs, 1)
	})

	t.Run("List Agent Commissions", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/agent-commissions?agent_id=%d", agent.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Data []models.AgentCommission `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, 450.0, response.Data[0].TotalCommissionDue)
	})
}

func TestCurrencyAPI(t *testing.T) {
	r, _ := setupTestAPI(t)

	w := doJSON(t, r, http.MethodGet, "/common_utils/currency/GBP", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "£", response["symbol"])

	// Unknown codes echo the code back
	w = doJSON(t, r, http.MethodGet, "/common_utils/currency/ZZZ", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ZZZ", response["symbol"])
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := setupTestAPI(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
