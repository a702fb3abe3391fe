package business

import (
	"fmt"

	"investcontrol/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RecordInstallment books a partial payment by a participant toward their
// committed amount. The payment may never exceed the outstanding balance
// (committed minus already installment-paid, compared at 2 decimals).
// Participant counters, the project paid-in aggregate and the investor's
// periodic ledger entry all move in one unit; any failure rolls back all.
func RecordInstallment(db *gorm.DB, projectID, participantID uint, amount float64, period string) (*models.Participant, error) {
	if !IsFiniteAmount(amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: installment must be a positive amount, got %v", ErrInvalidAmount, amount)
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	unlock := lockProject(projectID)
	defer unlock()

	var participant *models.Participant
	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		version := project.Version

		p, err := loadParticipant(tx, participantID)
		if err != nil {
			return err
		}
		if p.ProjectID != projectID {
			return fmt.Errorf("%w: participant %d does not belong to project %d", ErrNotFound, participantID, projectID)
		}

		pay := Round2(amount)
		outstanding := Round2(p.Amount - p.InstallmentPaid)
		if pay > outstanding {
			return fmt.Errorf("%w: remaining balance is %.2f", ErrPaymentExceedsBalance, outstanding)
		}

		previousPaid := p.InstallmentPaid
		stamp := PeriodStart(period)
		p.InstallmentNumber++
		p.InstallmentPaid = Round2(p.InstallmentPaid + pay)
		p.TotalPaid = Round2(p.TotalPaid + pay)
		p.AmountLastUpdatedAt = &stamp
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		entry, err := upsertInstallmentEntry(tx, projectID, p.InvestorID, period, pay)
		if err != nil {
			return err
		}

		seq, err := nextLogSeq(tx, entry.ID)
		if err != nil {
			return err
		}
		installmentLog := newLog(models.LogInstallment,
			fmt.Sprintf("Installment of %.2f received", pay), "", map[string]interface{}{
				"amount":         pay,
				"previous_paid":  previousPaid,
				"new_total_paid": p.InstallmentPaid,
				"currency":       project.CurrencyType,
			})
		installmentLog.EntryID = &entry.ID
		installmentLog.Seq = seq
		if err := tx.Create(&installmentLog).Error; err != nil {
			return err
		}

		if err := commitProject(tx, projectID, version, map[string]interface{}{
			"total_amount_paid": Round2(project.TotalAmountPaid + pay),
		}); err != nil {
			return err
		}

		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("installment recorded: project=%d participant=%d amount=%.2f", projectID, participantID, amount)
	return participant, nil
}

// upsertInstallmentEntry bumps the investor's per-period entry. Status is
// only set on creation; an existing entry keeps whatever the waterfall or
// earlier payments left there.
func upsertInstallmentEntry(tx *gorm.DB, projectID, investorID uint, period string, pay float64) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	res := tx.Where("project_id = ? AND investor_id = ? AND month = ?", projectID, investorID, period).
		Limit(1).Find(&entry)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		entry = models.LedgerEntry{
			ProjectID:        projectID,
			InvestorID:       &investorID,
			Month:            period,
			MonthlyTotalPaid: pay,
			Status:           models.StatusPaid,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return nil, err
		}
		return &entry, nil
	}

	if err := tx.Model(&entry).
		Update("monthly_total_paid", Round2(entry.MonthlyTotalPaid+pay)).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
