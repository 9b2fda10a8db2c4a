package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Shehriyar31/pp-Live/internal/models"
)

func TestVideoService_Status(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewVideoService(db, NewLedgerService(db, nil), nil)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	t.Run("counts from today are reported", func(t *testing.T) {
		lastClick := now.Add(-time.Hour)
		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date FROM accounts WHERE id = \\$1").
			WithArgs("account1").
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date"}).AddRow(4, lastClick))

		status, err := service.Status("account1")
		assert.NoError(t, err)
		assert.Equal(t, 4, status.DailyClicks)
		assert.Equal(t, 6, status.RemainingClicks)
		assert.True(t, status.CanClick)
	})

	t.Run("yesterday's counts read as zero", func(t *testing.T) {
		lastClick := now.AddDate(0, 0, -1)
		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date FROM accounts WHERE id = \\$1").
			WithArgs("account1").
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date"}).AddRow(10, lastClick))

		status, err := service.Status("account1")
		assert.NoError(t, err)
		assert.Equal(t, 0, status.DailyClicks)
		assert.Equal(t, 10, status.RemainingClicks)
		assert.True(t, status.CanClick)
	})
}

func TestVideoService_Click(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewVideoService(db, NewLedgerService(db, nil), nil)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	t.Run("ordinary click earns nothing", func(t *testing.T) {
		accountID := "account1"
		lastClick := now.Add(-time.Hour)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date, video_clicks").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date", "video_clicks"}).
				AddRow(3, lastClick, 120))

		mock.ExpectExec("UPDATE accounts SET daily_video_clicks = \\$1, last_video_click_date = \\$2").
			WithArgs(4, now, 121, accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		result, err := service.Click(accountID)
		assert.NoError(t, err)
		assert.Equal(t, 4, result.DailyClicks)
		assert.Equal(t, 6, result.RemainingClicks)
		assert.Equal(t, int64(0), result.RewardEarned)
		assert.Nil(t, result.Transaction)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tenth click credits the completion reward", func(t *testing.T) {
		accountID := "account1"
		lastClick := now.Add(-time.Hour)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date, video_clicks").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date", "video_clicks"}).
				AddRow(9, lastClick, 129))

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(500))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxDeposit, int64(14), "Daily video completion reward ($0.05)", int64(514), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(514), int64(14), accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectExec("UPDATE accounts SET daily_video_clicks = \\$1, last_video_click_date = \\$2").
			WithArgs(10, now, 130, accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		result, err := service.Click(accountID)
		assert.NoError(t, err)
		assert.Equal(t, 10, result.DailyClicks)
		assert.Equal(t, 0, result.RemainingClicks)
		assert.Equal(t, int64(14), result.RewardEarned)
		assert.Equal(t, int64(514), result.Transaction.BalanceAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exhausted cap mutates nothing", func(t *testing.T) {
		accountID := "account1"
		lastClick := now.Add(-time.Hour)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date, video_clicks").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date", "video_clicks"}).
				AddRow(10, lastClick, 130))

		mock.ExpectRollback()

		_, err := service.Click(accountID)
		assert.ErrorIs(t, err, models.ErrAlreadyActedToday)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("new day restarts the count", func(t *testing.T) {
		accountID := "account1"
		lastClick := now.AddDate(0, 0, -1)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT daily_video_clicks, last_video_click_date, video_clicks").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"daily_video_clicks", "last_video_click_date", "video_clicks"}).
				AddRow(10, lastClick, 130))

		mock.ExpectExec("UPDATE accounts SET daily_video_clicks = \\$1, last_video_click_date = \\$2").
			WithArgs(1, now, 131, accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		result, err := service.Click(accountID)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.DailyClicks)
		assert.Equal(t, 9, result.RemainingClicks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
