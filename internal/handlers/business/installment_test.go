package business

import (
	"testing"

	"investcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInstallment(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, db, 10000, 10)
	alice := createTestUser(t, db, "Alice", "investor", nil)

	_, err := AddContribution(db, project.ID, alice.ID, 6000, 0, "2026-08")
	require.NoError(t, err)
	participantID := mustParticipantID(t, db, project.ID, alice.ID)

	t.Run("First Payment", func(t *testing.T) {
		p, err := RecordInstallment(db, project.ID, participantID, 2000, "2026-08")
		require.NoError(t, err)
		assert.Equal(t, 1, p.InstallmentNumber)
		assert.Equal(t, 2000.0, p.InstallmentPaid)
		assert.Equal(t, 2000.0, p.TotalPaid)
		require.NotNil(t, p.AmountLastUpdatedAt)

		var proj models.Project
		require.NoError(t, db.First(&proj, project.ID).Error)
		assert.Equal(t, 2000.0, proj.TotalAmountPaid)

		var entry models.LedgerEntry
		require.NoError(t, db.Where("project_id = ? AND investor_id = ? AND month = ?",
			project.ID, alice.ID, "2026-08").First(&entry).Error)
		assert.Equal(t, 2000.0, entry.MonthlyTotalPaid)

		var logs []models.LedgerLog
		require.NoError(t, db.Where("entry_id = ? AND type = ?", entry.ID, models.LogInstallment).Find(&logs).Error)
		require.Len(t, logs, 1)
	})

	t.Run("Overpayment Rejected By A Penny", func(t *testing.T) {
		_, err := RecordInstallment(db, project.ID, participantID, 4000.01, "2026-08")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
	})

	t.Run("Exact Remaining Balance Accepted", func(t *testing.T) {
		p, err := RecordInstallment(db, project.ID, participantID, 4000, "2026-08")
		require.NoError(t, err)
		assert.Equal(t, 2, p.InstallmentNumber)
		assert.Equal(t, 6000.0, p.InstallmentPaid)

		var entry models.LedgerEntry
		require.NoError(t, db.Where("project_id = ? AND investor_id = ? AND month = ?",
			project.ID, alice.ID, "2026-08").First(&entry).Error)
		assert.Equal(t, 6000.0, entry.MonthlyTotalPaid)
	})

	t.Run("Nothing Outstanding Left", func(t *testing.T) {
		_, err := RecordInstallment(db, project.ID, participantID, 0.01, "2026-08")
		assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
	})

	t.Run("Rejects Bad Input", func(t *testing.T) {
		_, err := RecordInstallment(db, project.ID, participantID, -5, "2026-08")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = RecordInstallment(db, project.ID, participantID, 10, "August")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = RecordInstallment(db, project.ID, 4242, 10, "2026-08")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Participant Of Another Project", func(t *testing.T) {
		other := createTestProject(t, db, 5000, 0)
		_, err := RecordInstallment(db, other.ID, participantID, 10, "2026-08")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBuildStatement(t *testing.T) {
	db := newTestDB(t)
	project := createTestProject(t, db, 10000, 10)
	alice := createTestUser(t, db, "Alice", "investor", nil)
	bob := createTestUser(t, db, "Bob", "investor", nil)

	_, err := AddContribution(db, project.ID, alice.ID, 6000, 0, "2026-08")
	require.NoError(t, err)
	_, err = AddContribution(db, project.ID, bob.ID, 4000, 0, "2026-08")
	require.NoError(t, err)
	_, err = DeclareSale(db, project.ID, 15000, true, "2026-08")
	require.NoError(t, err)
	_, err = RecordInstallment(db, project.ID, mustParticipantID(t, db, project.ID, alice.ID), 1000, "2026-08")
	require.NoError(t, err)

	statement, err := BuildStatement(db, project.ID, "2026-08")
	require.NoError(t, err)
	assert.Equal(t, 4500.0, statement.TotalDue) // 2700 + 1800
	assert.Equal(t, 1000.0, statement.TotalPaid)
	assert.Equal(t, 4500.0, statement.Profit)
	assert.Equal(t, 3, statement.EntryCount) // global + two investors

	t.Run("Rebuild Is Idempotent", func(t *testing.T) {
		again, err := BuildStatement(db, project.ID, "2026-08")
		require.NoError(t, err)
		assert.Equal(t, statement.ID, again.ID)
		assert.Equal(t, statement.TotalDue, again.TotalDue)
	})

	t.Run("Empty Month", func(t *testing.T) {
		empty, err := BuildStatement(db, project.ID, "2026-09")
		require.NoError(t, err)
		assert.Equal(t, 0.0, empty.TotalDue)
		assert.Equal(t, 0, empty.EntryCount)
	})
}
