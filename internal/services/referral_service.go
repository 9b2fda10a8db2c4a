package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/rewards"
)

// ReferralService pays milestone rewards to referrers. A milestone fires
// when the referrer's active referral count lands exactly on the
// milestone's member count; completedLevels guarantees at-most-once payout
// per level no matter how often the evaluation replays.
type ReferralService struct {
	db     *sql.DB
	ledger *LedgerService
	events events.Publisher
}

func NewReferralService(db *sql.DB, ledger *LedgerService, pub events.Publisher) *ReferralService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ReferralService{db: db, ledger: ledger, events: pub}
}

// ActiveReferralCount recounts approved accounts referred by the given
// account. A fresh count, not an incrementing counter, so out-of-band
// status changes are tolerated.
func (s *ReferralService) ActiveReferralCount(referrerID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM accounts
		WHERE referred_by = $1 AND account_status = $2`,
		referrerID, models.AccountApproved).Scan(&count)
	return count, err
}

// Referrals lists the approved accounts referred by the given account,
// newest first.
func (s *ReferralService) Referrals(referrerID string) ([]models.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, name, username, created_at FROM accounts
		WHERE referred_by = $1 AND account_status = $2
		ORDER BY created_at DESC`,
		referrerID, models.AccountApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referrals := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Username, &a.CreatedAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, a)
	}
	return referrals, rows.Err()
}

// OnReferralApproved evaluates milestone rewards for a referrer after one
// of their referred accounts transitions to approved. Missing referrers
// are logged and skipped: the approval that triggered the evaluation must
// not fail because of them.
func (s *ReferralService) OnReferralApproved(referrerID string) error {
	count, err := s.ActiveReferralCount(referrerID)
	if err != nil {
		return fmt.Errorf("failed to count active referrals: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var completed pq.Int64Array
	err = tx.QueryRow(`SELECT completed_levels FROM accounts WHERE id = $1 FOR UPDATE`, referrerID).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.Warnf("[REFERRAL] Referrer %s not found, skipping milestone evaluation", referrerID)
			return nil
		}
		return err
	}

	var reached []models.MilestoneReachedEvent
	var balanceEvents []models.BalanceChangedEvent

	for _, milestone := range rewards.Milestones() {
		if count != milestone.RequiredActiveReferrals {
			continue
		}
		if containsLevel(completed, milestone.Level) {
			// Defensive guard: a replay tried to re-pay a completed level.
			// Skipping is always safe; never surfaced to the user.
			logrus.Warnf("[REFERRAL] %v: referrer %s level %d", models.ErrDuplicateMilestone, referrerID, milestone.Level)
			continue
		}

		rewardPKR := milestone.RewardPKR()
		description := fmt.Sprintf("%s achieved - %d members ($%g reward)", milestone.Name, count, milestone.RewardUSD)
		txn, err := s.ledger.CreditTx(tx, referrerID, rewardPKR, description, true)
		if err != nil {
			return fmt.Errorf("failed to credit milestone reward: %w", err)
		}

		if _, err := tx.Exec(`
			UPDATE accounts SET completed_levels = array_append(completed_levels, $1), updated_at = NOW()
			WHERE id = $2`,
			milestone.Level, referrerID); err != nil {
			return fmt.Errorf("failed to record completed level: %w", err)
		}

		reached = append(reached, models.MilestoneReachedEvent{
			AccountID:    referrerID,
			Level:        milestone.Level,
			LevelName:    milestone.Name,
			Members:      count,
			RewardAmount: rewardPKR,
		})
		balanceEvents = append(balanceEvents, models.BalanceChangedEvent{
			AccountID:   referrerID,
			NewBalance:  txn.BalanceAfter,
			Transaction: txn,
		})
	}

	if len(reached) == 0 {
		// Nothing crossed; the count either skipped over a milestone or
		// sits between two of them.
		return nil
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for i := range reached {
		logrus.Infof("[REFERRAL] %s reached level %d (%s) at %d members",
			referrerID, reached[i].Level, reached[i].LevelName, count)
		s.events.Publish(models.EventMilestoneReached, reached[i])
		s.events.Publish(models.EventBalanceChanged, balanceEvents[i])
	}
	return nil
}

func containsLevel(levels pq.Int64Array, level int) bool {
	for _, l := range levels {
		if int(l) == level {
			return true
		}
	}
	return false
}
