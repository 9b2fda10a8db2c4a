package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/rewards"
)

// SpinnerService resolves the randomized daily spinner. A spin is gated by
// a rolling 24-hour window on lastSpinDate, which is advanced on every
// permitted spin, winning or not.
type SpinnerService struct {
	db     *sql.DB
	ledger *LedgerService
	events events.Publisher

	now func() time.Time
	rng func() float64 // uniform in [0, 1)
}

func NewSpinnerService(db *sql.DB, ledger *LedgerService, pub events.Publisher) *SpinnerService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &SpinnerService{
		db:     db,
		ledger: ledger,
		events: pub,
		now:    time.Now,
		rng:    rand.Float64,
	}
}

// SpinResult is the outcome of one resolved spin.
type SpinResult struct {
	Prize       rewards.SpinnerPrize `json:"prize"`
	WonPKR      int64                `json:"wonPkr"`
	Transaction *models.Transaction  `json:"transaction,omitempty"`
}

// SpinStatus reports whether the gate is open and, if not, when it reopens.
type SpinStatus struct {
	CanSpin      bool       `json:"canSpin"`
	NextSpinTime *time.Time `json:"nextSpinTime,omitempty"`
}

// Status reads the spinner gate for an account without consuming it.
func (s *SpinnerService) Status(accountID string) (*SpinStatus, error) {
	var lastSpin *time.Time
	err := s.db.QueryRow(`SELECT last_spin_date FROM accounts WHERE id = $1`, accountID).Scan(&lastSpin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	now := s.now()
	status := &SpinStatus{CanSpin: SpinAllowed(lastSpin, now, rewards.SpinCooldown)}
	if !status.CanSpin {
		next := NextSpinTime(lastSpin, now, rewards.SpinCooldown)
		status.NextSpinTime = &next
	}
	return status, nil
}

// Spin draws one prize for the account. The gate check, the draw and the
// credit happen under a single account row lock; nothing is mutated when
// the gate is closed.
func (s *SpinnerService) Spin(accountID string) (*SpinResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lastSpin *time.Time
	err = tx.QueryRow(`SELECT last_spin_date FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&lastSpin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	now := s.now()
	if !SpinAllowed(lastSpin, now, rewards.SpinCooldown) {
		return nil, fmt.Errorf("%w: next spin at %s",
			models.ErrAlreadySpunToday, NextSpinTime(lastSpin, now, rewards.SpinCooldown).Format(time.RFC3339))
	}

	prize := DrawPrize(s.rng())
	result := &SpinResult{Prize: prize}

	if !prize.TryAgain {
		result.WonPKR = prize.RewardPKR()
		description := fmt.Sprintf("Spinner win: $%g (₨%d)", prize.ValueUSD, result.WonPKR)
		txn, err := s.ledger.CreditTx(tx, accountID, result.WonPKR, description, true)
		if err != nil {
			return nil, err
		}
		result.Transaction = txn
	}

	// lastSpinDate advances even on "try again"; the next spin is
	// unavailable for 24h regardless of outcome.
	if _, err := tx.Exec(`UPDATE accounts SET last_spin_date = $1, updated_at = NOW() WHERE id = $2`, now, accountID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if result.Transaction != nil {
		logrus.Infof("[SPINNER] %s won $%g (₨%d)", accountID, prize.ValueUSD, result.WonPKR)
		s.events.Publish(models.EventBalanceChanged, models.BalanceChangedEvent{
			AccountID:   accountID,
			NewBalance:  result.Transaction.BalanceAfter,
			Transaction: result.Transaction,
		})
	}
	return result, nil
}

// DrawPrize selects a prize from the weighted table. The table is walked
// in its fixed order, subtracting each weight from r * totalWeight; the
// first entry driving the remainder to or below zero wins. The walk order
// is part of the contract at weight boundaries.
func DrawPrize(r float64) rewards.SpinnerPrize {
	prizes := rewards.SpinnerPrizes()
	remainder := r * rewards.SpinnerTotalWeight()

	for _, prize := range prizes {
		remainder -= prize.Weight
		if remainder <= 0 {
			return prize
		}
	}
	return prizes[len(prizes)-1]
}
