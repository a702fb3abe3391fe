package business

import (
	"fmt"
	"time"

	"investcontrol/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddContribution records an investor paying into a project. The first
// contribution by an investor creates their participant record and an
// "investment" payment-log line; later contributions top up the existing
// position. The capacity invariant (sum of committed amounts never above
// the project capital) is enforced before any write.
func AddContribution(db *gorm.DB, projectID, investorID uint, amount, agentCommissionRate float64, period string) (*models.Participant, error) {
	if !IsFiniteAmount(amount) || amount <= 0 {
		return nil, fmt.Errorf("%w: contribution must be a positive amount, got %v", ErrInvalidAmount, amount)
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
		investor, err := loadUser(tx, investorID)
		if err != nil {
			return err
		}

		var invested float64
		if err := tx.Model(&models.Participant{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(SUM(amount), 0)").Scan(&invested).Error; err != nil {
			return err
		}
		headroom := Round2(project.ProjectAmount - invested)
		if Round2(amount) > headroom {
			return fmt.Errorf("%w: only %.2f %s left to invest in this project", ErrCapacityExceeded, headroom, project.CurrencyType)
		}

		var existing models.Participant
		res := tx.Where("project_id = ? AND investor_id = ?", projectID, investorID).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			existing = models.Participant{
				ProjectID:           projectID,
				InvestorID:          investorID,
				Amount:              Round2(amount),
				TotalDue:            Round2(amount),
				AgentCommissionRate: agentCommissionRate,
				Status:              "active",
			}
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}

			entry, err := getOrCreateEntry(tx, projectID, &investorID, period)
			if err != nil {
				return err
			}
			payment := models.PaymentLog{
				EntryID:         entry.ID,
				TransactionType: models.PaymentInvestment,
				DueAmount:       Round2(amount),
				Status:          models.StatusDue,
				Note:            "Initial investment added.",
			}
			payment.Metadata = mustJSON(map[string]interface{}{
				"investor_id":   investorID,
				"project_id":    projectID,
				"investor_name": investor.Name,
				"project_title": project.Title,
				"amount":        Round2(amount),
			})
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		} else {
			existing.Amount = Round2(existing.Amount + amount)
			existing.TotalDue = Round2(existing.TotalDue + amount)
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}

			entry, err := getOrCreateEntry(tx, projectID, &investorID, period)
			if err != nil {
				return err
			}
			payment := models.PaymentLog{
				EntryID:         entry.ID,
				TransactionType: models.PaymentInvestmentUpdated,
				Status:          models.StatusPartial,
				Note:            fmt.Sprintf("%s made an additional investment in the project", investor.Name),
				Metadata:        mustJSON(map[string]interface{}{"amount": Round2(amount)}),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		// Contribution moves the denominator under the paid-in policy and
		// the numerator always; shares re-pin either way.
		if err := RecalculateShares(tx, project, shareDenominator(project, project.ProjectAmount)); err != nil {
			return err
		}

		// Bump the project row under the version guard so a second process
		// that passed the headroom check against the same snapshot rolls
		// back retryable instead of jointly exceeding the capital.
		if err := commitProject(tx, projectID, version, map[string]interface{}{}); err != nil {
			return err
		}

		participant = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("contribution recorded: project=%d investor=%d amount=%.2f", projectID, investorID, amount)
	return participant, nil
}

// shareDenominator picks the dilution denominator for a project. The
// capital basis uses the (possibly just raised) capital target, the
// paid-in basis the cash actually collected.
func shareDenominator(project *models.Project, newCapital float64) float64 {
	if project.ShareBasis == models.ShareBasisPaidIn {
		return project.TotalAmountPaid
	}
	return newCapital
}

// RecalculateShares re-pins every active participant's percentage claim
// against the given denominator. Runs whenever the denominator changes so
// shares always reflect dilution.
func RecalculateShares(tx *gorm.DB, project *models.Project, denominator float64) error {
	if denominator <= 0 {
		return nil
	}

	var participants []models.Participant
	if err := tx.Where("project_id = ? AND status = ?", project.ID, "active").Find(&participants).Error; err != nil {
		return err
	}

	for i := range participants {
		p := &participants[i]
		if p.Amount <= 0 {
			continue
		}
		share := Round2(p.Amount / denominator * 100)
		if err := tx.Model(p).Update("project_share", share).Error; err != nil {
			return err
		}
	}
	return nil
}

// CloseParticipant exits a participant from a project: the position and
// share are zeroed, outstanding dues on every periodic entry are cleared,
// and the final payout lands on the most recent entry as a closeProject
// payment-log line with paid status.
func CloseParticipant(db *gorm.DB, participantID uint, finalPayout float64, period string) (*models.Participant, error) {
	if !IsFiniteAmount(finalPayout) || finalPayout <= 0 {
		return nil, fmt.Errorf("%w: final payout must be a positive amount, got %v", ErrInvalidAmount, finalPayout)
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	var participant *models.Participant
	err := db.Transaction(func(tx *gorm.DB) error {
		p, err := loadParticipant(tx, participantID)
		if err != nil {
			return err
		}
		investor, err := loadUser(tx, p.InvestorID)
		if err != nil {
			return err
		}

		payout := Round2(finalPayout)
		now := time.Now()
		p.Status = "block"
		p.Amount = 0
		p.ProjectShare = 0
		p.TotalDue = 0
		p.TotalPaid = Round2(p.TotalPaid + payout)
		p.AmountLastUpdatedAt = &now
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		var entries []models.LedgerEntry
		if err := tx.Where("project_id = ? AND investor_id = ?", p.ProjectID, p.InvestorID).
			Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			participant = p
			return nil
		}

		for i := range entries {
			if err := tx.Model(&entries[i]).Update("monthly_total_due", 0).Error; err != nil {
				return err
			}
		}

		last := &entries[len(entries)-1]
		if err := tx.Model(last).Updates(map[string]interface{}{
			"monthly_total_paid": Round2(last.MonthlyTotalPaid + payout),
			"status":             models.StatusPaid,
		}).Error; err != nil {
			return err
		}

		payment := models.PaymentLog{
			EntryID:         last.ID,
			TransactionType: models.PaymentCloseProject,
			PaidAmount:      payout,
			Status:          models.StatusPaid,
			Note:            "Project closed and fully paid",
			Metadata: mustJSON(map[string]interface{}{
				"project_id":    p.ProjectID,
				"investor_id":   p.InvestorID,
				"investor_name": investor.Name,
				"amount":        payout,
			}),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		participant = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("participant closed: id=%d payout=%.2f", participantID, finalPayout)
	return participant, nil
}
