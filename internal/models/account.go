package models

import (
	"time"

	"github.com/lib/pq"
)

// AccountStatus is the activation state of an account. Only approved
// accounts count toward a referrer's milestone progress.
type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountApproved AccountStatus = "approved"
	AccountRejected AccountStatus = "rejected"
)

type Account struct {
	ID                 string        `json:"id" db:"id"`
	Name               string        `json:"name" db:"name"`
	Username           string        `json:"username" db:"username"`
	Phone              string        `json:"phone,omitempty" db:"phone"`
	Role               string        `json:"role" db:"role"`
	Balance            int64         `json:"balance" db:"balance"` // whole PKR
	TotalEarnings      int64         `json:"totalEarnings" db:"total_earnings"`
	WithdrawalCount    int           `json:"withdrawalCount" db:"withdrawal_count"`
	CompletedLevels    pq.Int64Array `json:"completedLevels" db:"completed_levels"`
	ReferredBy         string        `json:"referredBy,omitempty" db:"referred_by"`
	Status             string        `json:"status" db:"status"` // Active or Inactive
	AccountStatus      AccountStatus `json:"accountStatus" db:"account_status"`
	LastSpinDate       *time.Time    `json:"lastSpinDate,omitempty" db:"last_spin_date"`
	DailyVideoClicks   int           `json:"dailyVideoClicks" db:"daily_video_clicks"`
	LastVideoClickDate *time.Time    `json:"lastVideoClickDate,omitempty" db:"last_video_click_date"`
	VideoClicks        int           `json:"videoClicks" db:"video_clicks"`
	CreatedAt          time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time     `json:"updatedAt" db:"updated_at"`
}

// HasCompletedLevel reports whether a milestone level was already paid out.
func (a *Account) HasCompletedLevel(level int) bool {
	for _, l := range a.CompletedLevels {
		if int(l) == level {
			return true
		}
	}
	return false
}

// AccountStatusUpdate is the whitelisted set of fields an admin edit may
// touch. Balance is deliberately absent: it changes only through the ledger.
type AccountStatusUpdate struct {
	Status        string        `json:"status" validate:"omitempty,oneof=Active Inactive"`
	AccountStatus AccountStatus `json:"accountStatus" validate:"omitempty,oneof=pending approved rejected"`
}
