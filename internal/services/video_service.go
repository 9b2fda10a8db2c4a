package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Shehriyar31/pp-Live/internal/events"
	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/rewards"
)

// VideoService accounts for rewarded video clicks: ten clicks per calendar
// day, with a fixed reward credited exactly on the tenth. The counter
// resets lazily at the server-local day boundary.
type VideoService struct {
	db     *sql.DB
	ledger *LedgerService
	events events.Publisher

	now func() time.Time
}

func NewVideoService(db *sql.DB, ledger *LedgerService, pub events.Publisher) *VideoService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &VideoService{db: db, ledger: ledger, events: pub, now: time.Now}
}

type VideoStatus struct {
	DailyClicks     int  `json:"dailyClicks"`
	RemainingClicks int  `json:"remainingClicks"`
	CanClick        bool `json:"canClick"`
}

type VideoClickResult struct {
	DailyClicks     int                 `json:"dailyClicks"`
	RemainingClicks int                 `json:"remainingClicks"`
	RewardEarned    int64               `json:"rewardEarned"`
	Transaction     *models.Transaction `json:"transaction,omitempty"`
}

// Status reports today's click usage without consuming a click.
func (s *VideoService) Status(accountID string) (*VideoStatus, error) {
	var counter DailyCounter
	err := s.db.QueryRow(`
		SELECT daily_video_clicks, last_video_click_date FROM accounts WHERE id = $1`,
		accountID).Scan(&counter.Count, &counter.LastDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	now := s.now()
	clicks := counter.Current(now)
	remaining := counter.Remaining(rewards.DailyVideoClickCap, now)
	return &VideoStatus{
		DailyClicks:     clicks,
		RemainingClicks: remaining,
		CanClick:        remaining > 0,
	}, nil
}

// Click consumes one daily click. When the cap is exhausted it fails with
// ErrAlreadyActedToday and nothing is mutated. The completion reward is
// credited inside the same transaction as the counter update.
func (s *VideoService) Click(accountID string) (*VideoClickResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var counter DailyCounter
	var lifetimeClicks int
	err = tx.QueryRow(`
		SELECT daily_video_clicks, last_video_click_date, video_clicks
		FROM accounts WHERE id = $1 FOR UPDATE`,
		accountID).Scan(&counter.Count, &counter.LastDate, &lifetimeClicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	now := s.now()
	updated, err := counter.Consume(rewards.DailyVideoClickCap, now)
	if err != nil {
		return nil, err
	}

	result := &VideoClickResult{
		DailyClicks:     updated.Count,
		RemainingClicks: updated.Remaining(rewards.DailyVideoClickCap, now),
	}

	if updated.Count == rewards.DailyVideoClickCap {
		txn, err := s.ledger.CreditTx(tx, accountID, rewards.VideoCompletionRewardPKR,
			"Daily video completion reward ($0.05)", true)
		if err != nil {
			return nil, err
		}
		result.RewardEarned = rewards.VideoCompletionRewardPKR
		result.Transaction = txn
	}

	if _, err := tx.Exec(`
		UPDATE accounts SET daily_video_clicks = $1, last_video_click_date = $2,
			video_clicks = $3, updated_at = NOW()
		WHERE id = $4`,
		updated.Count, now, lifetimeClicks+1, accountID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if result.Transaction != nil {
		logrus.Infof("[VIDEO] %s completed all %d daily videos, rewarded ₨%d",
			accountID, rewards.DailyVideoClickCap, result.RewardEarned)
		s.events.Publish(models.EventBalanceChanged, models.BalanceChangedEvent{
			AccountID:   accountID,
			NewBalance:  result.Transaction.BalanceAfter,
			Transaction: result.Transaction,
		})
	}
	return result, nil
}
