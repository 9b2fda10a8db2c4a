package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
)

// RequestService owns the deposit/withdrawal request lifecycle:
// Pending -> Approved/Rejected, resolved exactly once. Withdrawals follow
// the escrow-at-filing policy: amount plus fee leave the balance the
// moment the request is filed, and come back in full only on rejection.
type RequestService struct {
	db        *sql.DB
	ledger    *LedgerService
	referrals *ReferralService
	events    events.Publisher
}

func NewRequestService(db *sql.DB, ledger *LedgerService, referrals *ReferralService, pub events.Publisher) *RequestService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &RequestService{db: db, ledger: ledger, referrals: referrals, events: pub}
}

// DepositRequestInput carries the proof of payment for an activation fee.
// The screenshot reference is opaque to the workflow.
type DepositRequestInput struct {
	AccountID      string `json:"userId" validate:"required"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethod  string `json:"paymentMethod" validate:"required"`
	TransactionRef string `json:"transactionId"`
	Screenshot     string `json:"screenshot"`
	Description    string `json:"description"`
}

// WithdrawalRequestInput carries the payout destination for a withdrawal.
type WithdrawalRequestInput struct {
	AccountID     string `json:"userId" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	AccountNumber string `json:"accountNumber" validate:"required"`
	AccountName   string `json:"accountName" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
}

// CreateDepositRequest files an activation-fee deposit for admin review.
// No balance is touched at any point of a deposit's lifecycle.
func (s *RequestService) CreateDepositRequest(input DepositRequestInput) (*models.Request, error) {
	account, err := s.ledger.Snapshot(input.AccountID)
	if err != nil {
		return nil, err
	}

	request := &models.Request{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		Name:           account.Name,
		Username:       account.Username,
		Phone:          account.Phone,
		Type:           models.RequestDeposit,
		Amount:         input.Amount,
		Status:         models.RequestPending,
		PaymentMethod:  input.PaymentMethod,
		Description:    input.Description,
		TransactionRef: input.TransactionRef,
		Screenshot:     input.Screenshot,
	}

	err = s.db.QueryRow(`
		INSERT INTO requests (id, account_id, name, username, phone, type, amount, status,
			payment_method, description, transaction_ref, screenshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING created_at`,
		request.ID, request.AccountID, request.Name, request.Username, request.Phone,
		request.Type, request.Amount, request.Status, request.PaymentMethod,
		request.Description, request.TransactionRef, request.Screenshot,
	).Scan(&request.CreatedAt)
	if err != nil {
		return nil, err
	}

	s.events.Publish(models.EventRequestCreated, models.RequestCreatedEvent{Request: request})
	return request, nil
}

// CreateWithdrawalRequest validates the tier rule, escrows amount plus the
// 1% fee out of the balance, appends the pending withdraw transaction and
// files the request, all under one account row lock.
func (s *RequestService) CreateWithdrawalRequest(input WithdrawalRequestInput) (*models.Request, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var name, username, phone string
	var balance int64
	var withdrawalCount int
	err = tx.QueryRow(`
		SELECT name, username, COALESCE(phone, ''), balance, withdrawal_count
		FROM accounts WHERE id = $1 FOR UPDATE`,
		input.AccountID).Scan(&name, &username, &phone, &balance, &withdrawalCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	if err := ValidateWithdrawal(withdrawalCount, input.Amount, balance); err != nil {
		return nil, err
	}

	fee, total := WithdrawalDeduction(input.Amount)
	description := fmt.Sprintf("Withdrawal pending - ₨%d + ₨%d fee", input.Amount, fee)
	txn, err := s.ledger.DebitTx(tx, input.AccountID, total, description, models.TxPending)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE accounts SET withdrawal_count = withdrawal_count + 1, updated_at = NOW()
		WHERE id = $1`, input.AccountID); err != nil {
		return nil, err
	}

	request := &models.Request{
		ID:              uuid.NewString(),
		AccountID:       input.AccountID,
		Name:            name,
		Username:        username,
		Phone:           phone,
		Type:            models.RequestWithdraw,
		Amount:          input.Amount,
		Status:          models.RequestPending,
		PaymentMethod:   "Bank Transfer",
		Description:     fmt.Sprintf("Withdrawal request - %s withdrawal", withdrawalOrdinal(withdrawalCount+1)),
		AccountNumber:   input.AccountNumber,
		AccountName:     input.AccountName,
		BankName:        input.BankName,
		WithdrawalCount: withdrawalCount + 1,
	}

	err = tx.QueryRow(`
		INSERT INTO requests (id, account_id, name, username, phone, type, amount, status,
			payment_method, description, account_number, account_name, bank_name, withdrawal_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING created_at`,
		request.ID, request.AccountID, request.Name, request.Username, request.Phone,
		request.Type, request.Amount, request.Status, request.PaymentMethod,
		request.Description, request.AccountNumber, request.AccountName,
		request.BankName, request.WithdrawalCount,
	).Scan(&request.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logrus.Infof("[REQUEST] %s filed %s withdrawal of ₨%d (₨%d escrowed)",
		input.AccountID, withdrawalOrdinal(withdrawalCount+1), input.Amount, total)
	s.events.Publish(models.EventRequestCreated, models.RequestCreatedEvent{Request: request})
	s.events.Publish(models.EventBalanceChanged, models.BalanceChangedEvent{
		AccountID:   input.AccountID,
		NewBalance:  txn.BalanceAfter,
		Transaction: txn,
	})
	return request, nil
}

// Get returns a single request.
func (s *RequestService) Get(requestID string) (*models.Request, error) {
	request, err := scanRequest(s.db.QueryRow(selectRequest+` WHERE id = $1`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// List returns all requests, newest first.
func (s *RequestService) List() ([]models.Request, error) {
	rows, err := s.db.Query(selectRequest + ` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

// Approve resolves a pending request. Deposits activate the account and
// record a zero-net receipt; the deposit amount is never credited to the
// balance. Withdrawals flip their escrowed pending transaction to
// completed and the request is deleted; the balance was already reduced at
// filing time.
func (s *RequestService) Approve(requestID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(tx, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.RequestPending {
		return fmt.Errorf("%w: request %s is %s", models.ErrRequestAlreadyResolved, requestID, request.Status)
	}

	var referrerID string
	switch request.Type {
	case models.RequestDeposit:
		referrerID, err = s.approveDepositTx(tx, request)
	case models.RequestWithdraw:
		err = s.approveWithdrawalTx(tx, request)
	default:
		err = fmt.Errorf("unknown request type %q", request.Type)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logrus.Infof("[REQUEST] Approved %s request %s for %s", request.Type, request.ID, request.AccountID)
	s.events.Publish(models.EventRequestResolved, models.RequestResolvedEvent{
		RequestID: request.ID,
		Status:    models.RequestApproved,
	})

	// Referral milestones ride on the referred account's activation. The
	// evaluation runs outside the approval transaction: the idempotent
	// completedLevels guard makes replays safe.
	if referrerID != "" {
		if err := s.referrals.OnReferralApproved(referrerID); err != nil {
			logrus.Errorf("[REQUEST] Milestone evaluation failed for referrer %s: %v", referrerID, err)
		}
	}
	return nil
}

// approveDepositTx activates the account and records the fee receipt.
// Returns the referrer id, if any, for milestone evaluation after commit.
func (s *RequestService) approveDepositTx(tx *sql.Tx, request *models.Request) (string, error) {
	if _, err := tx.Exec(`UPDATE requests SET status = $1 WHERE id = $2`,
		models.RequestApproved, request.ID); err != nil {
		return "", err
	}

	var referredBy sql.NullString
	err := tx.QueryRow(`
		UPDATE accounts SET status = 'Active', account_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING referred_by`,
		models.AccountApproved, request.AccountID).Scan(&referredBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrAccountNotFound
		}
		return "", err
	}

	description := fmt.Sprintf("Account activation fee - %s", request.PaymentMethod)
	if _, err := s.ledger.RecordReceiptTx(tx, request.AccountID, request.Amount, description); err != nil {
		return "", err
	}
	return referredBy.String, nil
}

// approveWithdrawalTx completes the escrowed pending transaction and
// deletes the request. A missing pending transaction is a soft
// inconsistency: logged, and the approval still proceeds with the balance
// untouched.
func (s *RequestService) approveWithdrawalTx(tx *sql.Tx, request *models.Request) error {
	_, total := WithdrawalDeduction(request.Amount)

	result, err := tx.Exec(`
		UPDATE transactions SET status = $1
		WHERE id = (
			SELECT id FROM transactions
			WHERE account_id = $2 AND type = $3 AND status = $4 AND amount = $5
			ORDER BY created_at ASC LIMIT 1
		)`,
		models.TxCompleted, request.AccountID, models.TxWithdraw, models.TxPending, total)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		logrus.Warnf("[REQUEST] No pending transaction of ₨%d found for %s on approval of %s; proceeding without ledger update",
			total, request.AccountID, request.ID)
	}

	_, err = tx.Exec(`DELETE FROM requests WHERE id = $1`, request.ID)
	return err
}

// Reject resolves a pending request negatively. Withdrawals are refunded
// in full (amount plus fee), the withdrawal count steps back so the same
// tier applies to the next attempt, and the request is deleted. Rejected
// deposits are kept with their status updated.
func (s *RequestService) Reject(requestID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	request, err := s.lockRequest(tx, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.RequestPending {
		return fmt.Errorf("%w: request %s is %s", models.ErrRequestAlreadyResolved, requestID, request.Status)
	}

	var refundTxn *models.Transaction
	switch request.Type {
	case models.RequestDeposit:
		_, err = tx.Exec(`UPDATE requests SET status = $1 WHERE id = $2`,
			models.RequestRejected, request.ID)
	case models.RequestWithdraw:
		refundTxn, err = s.rejectWithdrawalTx(tx, request)
	default:
		err = fmt.Errorf("unknown request type %q", request.Type)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logrus.Infof("[REQUEST] Rejected %s request %s for %s", request.Type, request.ID, request.AccountID)
	s.events.Publish(models.EventRequestResolved, models.RequestResolvedEvent{
		RequestID: request.ID,
		Status:    models.RequestRejected,
	})
	if refundTxn != nil {
		s.events.Publish(models.EventBalanceChanged, models.BalanceChangedEvent{
			AccountID:   request.AccountID,
			NewBalance:  refundTxn.BalanceAfter,
			Transaction: refundTxn,
		})
	}
	return nil
}

func (s *RequestService) rejectWithdrawalTx(tx *sql.Tx, request *models.Request) (*models.Transaction, error) {
	fee, total := WithdrawalDeduction(request.Amount)
	description := fmt.Sprintf("Withdrawal rejected - Refund: ₨%d + ₨%d fee", request.Amount, fee)
	refundTxn, err := s.ledger.CreditTx(tx, request.AccountID, total, description, false)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE accounts SET withdrawal_count = GREATEST(withdrawal_count - 1, 0), updated_at = NOW()
		WHERE id = $1`, request.AccountID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`DELETE FROM requests WHERE id = $1`, request.ID); err != nil {
		return nil, err
	}
	return refundTxn, nil
}

// CleanupRejected bulk-deletes all rejected requests. No ordering
// guarantee with respect to unrelated per-account operations.
func (s *RequestService) CleanupRejected() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM requests WHERE status = $1`, models.RequestRejected)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const selectRequest = `
	SELECT id, account_id, name, username, COALESCE(phone, ''), type, amount, status,
		payment_method, COALESCE(description, ''), COALESCE(transaction_ref, ''),
		COALESCE(screenshot, ''), COALESCE(account_number, ''), COALESCE(account_name, ''),
		COALESCE(bank_name, ''), COALESCE(withdrawal_count, 0), created_at
	FROM requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.Request, error) {
	request := &models.Request{}
	err := row.Scan(&request.ID, &request.AccountID, &request.Name, &request.Username,
		&request.Phone, &request.Type, &request.Amount, &request.Status,
		&request.PaymentMethod, &request.Description, &request.TransactionRef,
		&request.Screenshot, &request.AccountNumber, &request.AccountName,
		&request.BankName, &request.WithdrawalCount, &request.CreatedAt)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) lockRequest(tx *sql.Tx, requestID string) (*models.Request, error) {
	request, err := scanRequest(tx.QueryRow(selectRequest+` WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}
