package models

import (
	"time"
)

// TransactionType is the signed direction of a ledger entry.
type TransactionType string

const (
	TxDeposit  TransactionType = "deposit"
	TxWithdraw TransactionType = "withdraw"
)

// TransactionStatus tracks settlement of a ledger entry. Only withdraw
// entries are ever created pending; everything else is completed at birth.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxPending   TransactionStatus = "pending"
	TxRejected  TransactionStatus = "rejected"
)

// Transaction is one append-only ledger entry. BalanceAfter is the account
// balance snapshot taken at the instant the entry was applied.
type Transaction struct {
	ID           int64             `json:"id" db:"id"`
	AccountID    string            `json:"accountId" db:"account_id"`
	Type         TransactionType   `json:"type" db:"type"`
	Amount       int64             `json:"amount" db:"amount"` // whole PKR, always positive
	Description  string            `json:"description" db:"description"`
	BalanceAfter int64             `json:"balanceAfter" db:"balance_after"`
	Status       TransactionStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"date" db:"created_at"`
}
