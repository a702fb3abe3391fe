package business

import (
	"fmt"
	"sync/atomic"
	"testing"

	"investcontrol/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory database with the full schema.
// Each test gets its own named shared-cache DB so the pool's
// connections all see the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
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
	return db
}

func createTestProject(t *testing.T, db *gorm.DB, amount, adminRate float64) *models.Project {
	t.Helper()
	project := &models.Project{
		Title:         "Harbour View Development",
		CurrencyType:  "GBP",
		ProjectAmount: amount,
		AdminCostRate: adminRate,
		ShareBasis:    models.ShareBasisCapital,
		Status:        "active",
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func createTestUser(t *testing.T, db *gorm.DB, name, role string, agentID *uint) *models.UserAccount {
	t.Helper()
	user := &models.UserAccount{Name: name, Role: role, AgentID: agentID}
	require.NoError(t, db.Create(user).Error)
	return user
}
