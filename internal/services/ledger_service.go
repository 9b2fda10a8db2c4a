package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
)

// LedgerService owns all balance mutations. Every change goes through
// Credit or Debit, appends an immutable transaction carrying the balance
// snapshot, and is serialized per account by a row lock held for the
// duration of one database transaction.
type LedgerService struct {
	db     *sql.DB
	events events.Publisher
}

func NewLedgerService(db *sql.DB, pub events.Publisher) *LedgerService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &LedgerService{db: db, events: pub}
}

// Credit adds amount to the account balance and appends a completed
// deposit entry. When reward is true the amount also counts toward the
// account's cumulative earnings.
func (s *LedgerService) Credit(accountID string, amount int64, description string, reward bool) (*models.Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txn, err := s.CreditTx(tx, accountID, amount, description, reward)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyBalance(accountID, txn)
	return txn, nil
}

// Debit removes amount from the account balance and appends a withdraw
// entry with the given settlement status. It fails with
// ErrInsufficientBalance before any mutation when amount exceeds the
// balance.
func (s *LedgerService) Debit(accountID string, amount int64, description string, status models.TransactionStatus) (*models.Transaction, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txn, err := s.DebitTx(tx, accountID, amount, description, status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifyBalance(accountID, txn)
	return txn, nil
}

// CreditTx is Credit running inside the caller's database transaction.
// The caller owns commit, rollback and event emission.
func (s *LedgerService) CreditTx(tx *sql.Tx, accountID string, amount int64, description string, reward bool) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	balance, err := s.lockBalance(tx, accountID)
	if err != nil {
		return nil, err
	}

	newBalance := balance + amount
	txn, err := s.appendTransaction(tx, accountID, models.TxDeposit, amount, description, newBalance, models.TxCompleted)
	if err != nil {
		return nil, err
	}

	var earningsDelta int64
	if reward {
		earningsDelta = amount
	}
	if err := s.updateBalance(tx, accountID, newBalance, earningsDelta); err != nil {
		return nil, err
	}

	return txn, nil
}

// DebitTx is Debit running inside the caller's database transaction.
func (s *LedgerService) DebitTx(tx *sql.Tx, accountID string, amount int64, description string, status models.TransactionStatus) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	balance, err := s.lockBalance(tx, accountID)
	if err != nil {
		return nil, err
	}

	if amount > balance {
		return nil, fmt.Errorf("%w: current balance is %d, requested %d", models.ErrInsufficientBalance, balance, amount)
	}

	newBalance := balance - amount
	txn, err := s.appendTransaction(tx, accountID, models.TxWithdraw, amount, description, newBalance, status)
	if err != nil {
		return nil, err
	}

	if err := s.updateBalance(tx, accountID, newBalance, 0); err != nil {
		return nil, err
	}

	return txn, nil
}

// RecordReceiptTx appends a zero-net entry: the transaction is recorded as
// history but the balance is untouched. Used for deposit activation fees,
// which unlock the account without ever crediting it.
func (s *LedgerService) RecordReceiptTx(tx *sql.Tx, accountID string, amount int64, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("receipt amount must be positive, got %d", amount)
	}

	balance, err := s.lockBalance(tx, accountID)
	if err != nil {
		return nil, err
	}

	return s.appendTransaction(tx, accountID, models.TxDeposit, amount, description, balance, models.TxCompleted)
}

// Snapshot reads the full account record without locking it.
func (s *LedgerService) Snapshot(accountID string) (*models.Account, error) {
	account := &models.Account{}
	var referredBy sql.NullString
	err := s.db.QueryRow(`
		SELECT id, name, username, COALESCE(phone, ''), role, balance, total_earnings,
		       withdrawal_count, completed_levels, referred_by, status, account_status,
		       last_spin_date, daily_video_clicks, last_video_click_date, video_clicks,
		       created_at, updated_at
		FROM accounts WHERE id = $1`, accountID).Scan(
		&account.ID, &account.Name, &account.Username, &account.Phone, &account.Role,
		&account.Balance, &account.TotalEarnings, &account.WithdrawalCount,
		&account.CompletedLevels, &referredBy, &account.Status, &account.AccountStatus,
		&account.LastSpinDate, &account.DailyVideoClicks, &account.LastVideoClickDate,
		&account.VideoClicks, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}
	account.ReferredBy = referredBy.String
	return account, nil
}

// Transactions lists an account's ledger entries, oldest first.
func (s *LedgerService) Transactions(accountID string) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, account_id, type, amount, description, balance_after, status, created_at
		FROM transactions WHERE account_id = $1 ORDER BY created_at ASC, id ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Type, &txn.Amount,
			&txn.Description, &txn.BalanceAfter, &txn.Status, &txn.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// AdjustBalance is the admin-initiated credit or debit. It rides the same
// ledger path as every other mutation; admin edits cannot touch the
// balance field directly.
func (s *LedgerService) AdjustBalance(accountID string, txType models.TransactionType, amount int64, description string) (*models.Transaction, error) {
	if description == "" {
		if txType == models.TxDeposit {
			description = "Deposit by admin"
		} else {
			description = "Withdrawal by admin"
		}
	}

	switch txType {
	case models.TxDeposit:
		return s.Credit(accountID, amount, description, false)
	case models.TxWithdraw:
		return s.Debit(accountID, amount, description, models.TxCompleted)
	default:
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}
}

func (s *LedgerService) lockBalance(tx *sql.Tx, accountID string) (int64, error) {
	var balance int64
	err := tx.QueryRow(`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models.ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (s *LedgerService) appendTransaction(tx *sql.Tx, accountID string, txType models.TransactionType, amount int64, description string, balanceAfter int64, status models.TransactionStatus) (*models.Transaction, error) {
	txn := &models.Transaction{
		AccountID:    accountID,
		Type:         txType,
		Amount:       amount,
		Description:  description,
		BalanceAfter: balanceAfter,
		Status:       status,
	}
	err := tx.QueryRow(`
		INSERT INTO transactions (account_id, type, amount, description, balance_after, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`,
		accountID, txType, amount, description, balanceAfter, status,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *LedgerService) updateBalance(tx *sql.Tx, accountID string, newBalance, earningsDelta int64) error {
	result, err := tx.Exec(`
		UPDATE accounts SET balance = $1, total_earnings = total_earnings + $2, updated_at = NOW()
		WHERE id = $3`,
		newBalance, earningsDelta, accountID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

// notifyBalance emits the balance-changed event. Called only after the
// mutation is durably committed, never before.
func (s *LedgerService) notifyBalance(accountID string, txn *models.Transaction) {
	logrus.Infof("[LEDGER] %s %s ₨%d, balance now ₨%d", accountID, txn.Type, txn.Amount, txn.BalanceAfter)
	s.events.Publish(models.EventBalanceChanged, models.BalanceChangedEvent{
		AccountID:   accountID,
		NewBalance:  txn.BalanceAfter,
		Transaction: txn,
	})
}
