package business

import (
	"fmt"

	"investcontrol/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RaiseCapital moves a project's capital target. With isCapitalRaise the
// delta is added on top of the current target and every active
// participant's share is re-pinned against the new denominator (dilution);
// a single informational entry lands on the project-level ledger. Without
// the flag the delta overwrites the target outright (a correction) and
// neither shares nor the ledger are touched.
func RaiseCapital(db *gorm.DB, projectID uint, amountDelta float64, isCapitalRaise bool, period string) (*models.Project, error) {
	if !IsFiniteAmount(amountDelta) || amountDelta <= 0 {
		return nil, fmt.Errorf("%w: capital amount must be a positive finite number, got %v", ErrInvalidAmount, amountDelta)
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}

	unlock := lockProject(projectID)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		project, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		version := project.Version

		if !isCapitalRaise {
			return commitProject(tx, projectID, version, map[string]interface{}{
				"project_amount": Round2(amountDelta),
			})
		}

		newCapital := Round2(project.ProjectAmount + amountDelta)
		if err := RecalculateShares(tx, project, shareDenominator(project, newCapital)); err != nil {
			return err
		}

		entry, err := getOrCreateEntry(tx, projectID, nil, period)
		if err != nil {
			return err
		}
		seq, err := nextLogSeq(tx, entry.ID)
		if err != nil {
			return err
		}
		raiseLog := newLog(models.LogInvestmentUpdated, "Investment Raised capital", "", map[string]interface{}{
			"amount":         Round2(amountDelta),
			"updated_amount": newCapital,
			"currency":       project.CurrencyType,
		})
		raiseLog.EntryID = &entry.ID
		raiseLog.Seq = seq
		if err := tx.Create(&raiseLog).Error; err != nil {
			return err
		}

		return commitProject(tx, projectID, version, map[string]interface{}{
			"project_amount": newCapital,
		})
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("capital updated: project=%d delta=%.2f raise=%v", projectID, amountDelta, isCapitalRaise)

	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateDetailsInput carries the plain-metadata fields a PATCH may touch.
// Nil pointers leave the stored value alone. This path never enters the
// allocation waterfall.
type UpdateDetailsInput struct {
	Title         *string
	Details       *string
	Image         *string
	Documents     []byte
	AdminCostRate *float64
	ProjectAmount *float64
	Status        *string
}

// UpdateDetails patches project metadata without any ledger side effects.
func UpdateDetails(db *gorm.DB, projectID uint, input UpdateDetailsInput) (*models.Project, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Details != nil {
		updates["details"] = *input.Details
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.Documents != nil {
		updates["documents"] = input.Documents
	}
	if input.AdminCostRate != nil {
		if !IsFiniteAmount(*input.AdminCostRate) || *input.AdminCostRate < 0 {
			return nil, fmt.Errorf("%w: admin cost rate %v", ErrInvalidAmount, *input.AdminCostRate)
		}
		updates["admin_cost_rate"] = *input.AdminCostRate
	}
	if input.ProjectAmount != nil {
		if !IsFiniteAmount(*input.ProjectAmount) || *input.ProjectAmount <= 0 {
			return nil, fmt.Errorf("%w: project amount %v", ErrInvalidAmount, *input.ProjectAmount)
		}
		updates["project_amount"] = Round2(*input.ProjectAmount)
	}
	if input.Status != nil {
		if *input.Status != "active" && *input.Status != "block" {
			return nil, fmt.Errorf("%w: status must be 'active' or 'block'", ErrInvalidAmount)
		}
		updates["status"] = *input.Status
	}

	var project *models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		p, err := loadProject(tx, projectID)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			project = p
			return nil
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return err
		}
		project = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}
