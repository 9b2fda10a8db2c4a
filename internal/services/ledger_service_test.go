package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Shehriyar31/pp-Live/internal/models"
)

func TestLedgerService_Credit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db, nil)

	t.Run("successful reward credit", func(t *testing.T) {
		accountID := "account1"
		amount := int64(700)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(1000))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxDeposit, amount, "Starter Bonus achieved - 5 members ($2.5 reward)", int64(1700), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(1700), amount, accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		txn, err := service.Credit(accountID, amount, "Starter Bonus achieved - 5 members ($2.5 reward)", true)
		assert.NoError(t, err)
		assert.Equal(t, int64(1700), txn.BalanceAfter)
		assert.Equal(t, models.TxDeposit, txn.Type)
		assert.Equal(t, models.TxCompleted, txn.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-reward credit leaves earnings untouched", func(t *testing.T) {
		accountID := "account1"
		amount := int64(144)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(9856))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxDeposit, amount, "Withdrawal rejected - Refund: ₨143 + ₨1 fee", int64(10000), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(10000), int64(0), accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		txn, err := service.Credit(accountID, amount, "Withdrawal rejected - Refund: ₨143 + ₨1 fee", false)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), txn.BalanceAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := service.Credit("account1", 0, "nothing", false)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerService_Debit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db, nil)

	t.Run("successful pending debit", func(t *testing.T) {
		accountID := "account1"
		amount := int64(144)

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(10000))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxWithdraw, amount, "Withdrawal pending - ₨143 + ₨1 fee", int64(9856), models.TxPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(9856), int64(0), accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		txn, err := service.Debit(accountID, amount, "Withdrawal pending - ₨143 + ₨1 fee", models.TxPending)
		assert.NoError(t, err)
		assert.Equal(t, int64(9856), txn.BalanceAfter)
		assert.Equal(t, models.TxPending, txn.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient balance leaves account untouched", func(t *testing.T) {
		accountID := "account1"

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(100))

		mock.ExpectRollback()

		_, err := service.Debit(accountID, 144, "Withdrawal pending - ₨143 + ₨1 fee", models.TxPending)
		assert.ErrorIs(t, err, models.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown account", func(t *testing.T) {
		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))

		mock.ExpectRollback()

		_, err := service.Debit("missing", 144, "Withdrawal pending", models.TxPending)
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerService_RecordReceiptTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db, nil)

	t.Run("receipt leaves balance unchanged", func(t *testing.T) {
		accountID := "account1"

		mock.ExpectBegin()
		tx, _ := db.Begin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(0))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxDeposit, int64(1430), "Account activation fee - Easypaisa", int64(0), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), time.Now()))

		txn, err := service.RecordReceiptTx(tx, accountID, 1430, "Account activation fee - Easypaisa")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), txn.BalanceAfter)
		assert.Equal(t, int64(1430), txn.Amount)
	})
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewLedgerService(db, nil)

	t.Run("admin deposit uses default description", func(t *testing.T) {
		accountID := "account1"

		mock.ExpectBegin()

		mock.ExpectQuery("SELECT balance FROM accounts WHERE id = \\$1 FOR UPDATE").
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(500))

		mock.ExpectQuery("INSERT INTO transactions").
			WithArgs(accountID, models.TxDeposit, int64(250), "Deposit by admin", int64(750), models.TxCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), time.Now()))

		mock.ExpectExec("UPDATE accounts SET balance = \\$1, total_earnings = total_earnings \\+ \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(int64(750), int64(0), accountID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mock.ExpectCommit()

		txn, err := service.AdjustBalance(accountID, models.TxDeposit, 250, "")
		assert.NoError(t, err)
		assert.Equal(t, "Deposit by admin", txn.Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := service.AdjustBalance("account1", "transfer", 250, "")
		assert.Error(t, err)
	})
}
