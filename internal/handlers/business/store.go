package business

import (
	"encoding/json"
	"errors"
	"fmt"

	"investcontrol/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func loadProject(tx *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := tx.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	return &project, nil
}

func loadParticipant(tx *gorm.DB, participantID uint) (*models.Participant, error) {
	var participant models.Participant
	if err := tx.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: participant %d", ErrNotFound, participantID)
		}
		return nil, err
	}
	return &participant, nil
}

func loadUser(tx *gorm.DB, userID uint) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

// getOrCreateEntry finds the ledger entry for (project, investor, month),
// creating it with zeroed totals when absent. investorID == nil addresses
// the project-level (global) entry.
func getOrCreateEntry(tx *gorm.DB, projectID uint, investorID *uint, month string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	q := tx.Where("project_id = ? AND month = ?", projectID, month)
	if investorID == nil {
		q = q.Where("investor_id IS NULL")
	} else {
		q = q.Where("investor_id = ?", *investorID)
	}

	err := q.First(&entry).Error
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry = models.LedgerEntry{
		ProjectID:  projectID,
		InvestorID: investorID,
		Month:      month,
		Status:     models.StatusDue,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// nextLogSeq returns the sequence number the next sub-entry of an entry
// should carry.
func nextLogSeq(tx *gorm.DB, entryID uint) (int, error) {
	var count int64
	if err := tx.Model(&models.LedgerLog{}).Where("entry_id = ?", entryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// newLog builds an in-memory sub-entry with a stable identifier assigned
// before persistence, so a later sub-entry in the same batch can reference
// it without a reload round-trip.
func newLog(logType, message, refID string, metadata interface{}) models.LedgerLog {
	raw, _ := json.Marshal(metadata)
	return models.LedgerLog{
		LogID:    uuid.NewString(),
		RefID:    refID,
		Type:     logType,
		Message:  message,
		Metadata: raw,
	}
}

func mustJSON(v interface{}) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

// commitProject applies the unit's project-row updates guarded by the
// version read at the start of the unit. Zero rows touched means another
// writer committed in between; the whole unit rolls back as retryable.
func commitProject(tx *gorm.DB, projectID, loadedVersion uint, updates map[string]interface{}) error {
	updates["version"] = loadedVersion + 1
	res := tx.Model(&models.Project{}).
		Where("id = ? AND version = ?", projectID, loadedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: project %d", ErrConflictRetryable, projectID)
	}
	return nil
}
