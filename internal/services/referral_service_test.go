package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Shehriyar31/pp-Live/internal/models"
)

func TestReferralService_ActiveReferralCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReferralService(db, NewLedgerService(db, nil), nil)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
		WithArgs("referrer1", models.AccountApproved).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := service.ActiveReferralCount("referrer1")
	assert.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferralService_OnReferralApproved(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewReferralService(db, NewLedgerService(db, nil), nil)
	referrerID := "referrer1"

	t.Run("exact count pays the milestone once", func(t *testing.T) {
		// 5th approved referral lands exactly on level 1 (5 members, $2.5).
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
			WithArgs(referrerID, models.AccountApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT completed_levels FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(referrerID).
			WillReturnRows(sqlmock.NewRows([]string{"completed_levels"}).AddRow(pq.Int64Array{}))

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(referrerID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(0))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(referrerID, models.TxDeposit, int64(700), "Starter Bonus achieved - 5 members ($2.5 reward)", int64(700), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(700), int64(700), referrerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec("UPDATE accounts SET completed_levels = array_append\\(completed_levels, \\$1\\), updated_at = NOW\\(\\)").
			WithArgs(1, referrerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		err := service.OnReferralApproved(referrerID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count between milestones pays nothing", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
			WithArgs(referrerID, models.AccountApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT completed_levels FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(referrerID).
			WillReturnRows(sqlmock.NewRows([]string{"completed_levels"}).AddRow(pq.Int64Array{1}))

		mock.ExpectRollback()

		err := service.OnReferralApproved(referrerID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completed level is never paid twice", func(t *testing.T) {
		// Count sits on 5 again (a referral was demoted and re-approved),
		// but level 1 is already in completedLevels.
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
			WithArgs(referrerID, models.AccountApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT completed_levels FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(referrerID).
			WillReturnRows(sqlmock.NewRows([]string{"completed_levels"}).AddRow(pq.Int64Array{1}))

		mock.ExpectRollback()

		err := service.OnReferralApproved(referrerID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skipped milestone is forfeited", func(t *testing.T) {
		// Jumping from 4 to 6 skips the 5-member milestone entirely.
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
			WithArgs(referrerID, models.AccountApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT completed_levels FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(referrerID).
			WillReturnRows(sqlmock.NewRows([]string{"completed_levels"}).AddRow(pq.Int64Array{}))

		mock.ExpectRollback()

		err := service.OnReferralApproved(referrerID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing referrer is skipped quietly", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts").
			WithArgs("gone", models.AccountApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT completed_levels FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs("gone").
			WillReturnRows(sqlmock.NewRows([]string{"completed_levels"}))

		mock.ExpectRollback()

		err := service.OnReferralApproved("gone")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
