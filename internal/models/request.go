package models

import (
	"time"
)

type RequestType string

const (
	RequestDeposit  RequestType = "Deposit"
	RequestWithdraw RequestType = "Withdraw"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// Request is a user-submitted deposit or withdrawal awaiting admin
// resolution. It is distinct from the Transaction it may later resolve.
type Request struct {
	ID            string        `json:"id" db:"id"`
	AccountID     string        `json:"userId" db:"account_id"`
	Name          string        `json:"user" db:"name"`
	Username      string        `json:"username" db:"username"`
	Phone         string        `json:"phone,omitempty" db:"phone"`
	Type          RequestType   `json:"type" db:"type"`
	Amount        int64         `json:"amount" db:"amount"`
	Status        RequestStatus `json:"status" db:"status"`
	PaymentMethod string        `json:"paymentMethod" db:"payment_method"`
	Description   string        `json:"description,omitempty" db:"description"`

	// Deposit proof of payment. The screenshot reference is opaque here.
	TransactionRef string `json:"transactionId,omitempty" db:"transaction_ref"`
	Screenshot     string `json:"screenshot,omitempty" db:"screenshot"`

	// Withdrawal payout destination.
	AccountNumber   string `json:"accountNumber,omitempty" db:"account_number"`
	AccountName     string `json:"accountName,omitempty" db:"account_name"`
	BankName        string `json:"bankName,omitempty" db:"bank_name"`
	WithdrawalCount int    `json:"withdrawalCount,omitempty" db:"withdrawal_count"`

	CreatedAt time.Time `json:"date" db:"created_at"`
}

// PasswordResetRequest is an account-keyed reset submission resolved by an
// admin. No password material passes through this record.
type PasswordResetRequest struct {
	ID         string        `json:"id" db:"id"`
	AccountID  string        `json:"userId" db:"account_id"`
	Username   string        `json:"username" db:"username"`
	Status     RequestStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"date" db:"created_at"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty" db:"resolved_at"`
}
