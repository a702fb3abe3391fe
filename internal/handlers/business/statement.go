package business

import (
	"errors"

	"investcontrol/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BuildStatement aggregates a project's ledger entries for one month into
// its monthly statement row. Reporting only; runs outside the core units
// of work (cron / worker path) and is safe to re-run.
func BuildStatement(db *gorm.DB, projectID uint, month string) (*models.ProjectStatement, error) {
	if err := ValidatePeriod(month); err != nil {
		return nil, err
	}

	var agg struct {
		TotalDue   float64
		TotalPaid  float64
		Profit     float64
		EntryCount int
	}
	err := db.Model(&models.LedgerEntry{}).
		Where("project_id = ? AND month = ?", projectID, month).
		Select("COALESCE(SUM(monthly_total_due),0) AS total_due, COALESCE(SUM(monthly_total_paid),0) AS total_paid, COALESCE(SUM(profit),0) AS profit, COUNT(*) AS entry_count").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	var statement models.ProjectStatement
	err = db.Where("project_id = ? AND month = ?", projectID, month).First(&statement).Error
	switch {
	case err == nil:
		statement.TotalDue = Round2(agg.TotalDue)
		statement.TotalPaid = Round2(agg.TotalPaid)
		statement.Profit = Round2(agg.Profit)
		statement.EntryCount = agg.EntryCount
		if err := db.Save(&statement).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		statement = models.ProjectStatement{
			ProjectID:  projectID,
			Month:      month,
			TotalDue:   Round2(agg.TotalDue),
			TotalPaid:  Round2(agg.TotalPaid),
			Profit:     Round2(agg.Profit),
			EntryCount: agg.EntryCount,
		}
		if err := db.Create(&statement).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	logrus.Infof("statement built: project=%d month=%s entries=%d", projectID, month, agg.EntryCount)
	return &statement, nil
}
