package services

import (
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
)

// AccountService applies admin edits to accounts through an explicit
// whitelist. There is no generic field assignment: balance and earnings
// are reachable only through the ledger.
type AccountService struct {
	db     *sql.DB
	ledger *LedgerService
	events events.Publisher
}

func NewAccountService(db *sql.DB, ledger *LedgerService, pub events.Publisher) *AccountService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &AccountService{db: db, ledger: ledger, events: pub}
}

// UpdateStatus applies the whitelisted status fields. Empty fields are
// left unchanged. The updated account snapshot is returned.
func (s *AccountService) UpdateStatus(accountID string, update models.AccountStatusUpdate) (*models.Account, error) {
	result, err := s.db.Exec(`
		UPDATE accounts SET
			status = COALESCE(NULLIF($1, ''), status),
			account_status = COALESCE(NULLIF($2, ''), account_status),
			updated_at = NOW()
		WHERE id = $3`,
		update.Status, string(update.AccountStatus), accountID)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrAccountNotFound
	}

	account, err := s.ledger.Snapshot(accountID)
	if err != nil {
		return nil, err
	}

	logrus.Infof("[ACCOUNT] %s status updated to %s/%s", accountID, account.Status, account.AccountStatus)
	s.events.Publish(models.EventAccountUpdated, account)
	return account, nil
}

// List returns every account, newest first. Balances in the listing are
// read-only snapshots.
func (s *AccountService) List() ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, name, username, COALESCE(phone, ''), role, balance, total_earnings,
			withdrawal_count, status, account_status, created_at
		FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Username, &a.Phone, &a.Role, &a.Balance,
			&a.TotalEarnings, &a.WithdrawalCount, &a.Status, &a.AccountStatus, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
