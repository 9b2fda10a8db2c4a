// Package rewards holds the static reward configuration: the referral
// milestone schedule, the withdrawal tier ladder, the spinner prize table
// and the daily action caps. It carries no state.
package rewards

import (
	"math"
	"time"
)

// USDToPKR is the fixed conversion rate used for every USD-denominated
// reward in the schedule.
const USDToPKR = 280

const (
	// DailyVideoClickCap is the number of rewarded video clicks per
	// calendar day.
	DailyVideoClickCap = 10

	// VideoCompletionRewardPKR is credited when the daily click cap is
	// reached ($0.05 at the fixed rate, rounded).
	VideoCompletionRewardPKR = 14

	// SpinCooldown is the rolling elapsed-time gate between spins. This is
	// deliberately not a calendar-day boundary; see the video limiter for
	// the other model.
	SpinCooldown = 24 * time.Hour
)

// Milestone is a one-time referral-count threshold paying a fixed reward.
type Milestone struct {
	Level                   int
	RequiredActiveReferrals int
	RewardUSD               float64
	Name                    string
}

// RewardPKR converts the milestone reward to whole PKR at the fixed rate.
func (m Milestone) RewardPKR() int64 {
	return int64(math.Round(m.RewardUSD * USDToPKR))
}

var milestones = []Milestone{
	{1, 5, 2.5, "Starter Bonus"},
	{2, 10, 5, "Bronze Entry"},
	{3, 20, 5, "Bronze Plus"},
	{4, 50, 5, "Silver Start"},
	{5, 100, 20, "Silver Pro"},
	{6, 200, 50, "Golden Entry"},
	{7, 300, 25, "Golden Plus"},
	{8, 400, 25, "Golden Pro"},
	{9, 500, 25, "Platinum Entry"},
	{10, 600, 25, "Platinum Plus"},
	{11, 700, 100, "Platinum Elite"},
	{12, 800, 25, "Diamond Entry"},
	{13, 900, 25, "Diamond Plus"},
	{14, 1000, 25, "Diamond Pro"},
	{15, 1100, 25, "Royal Diamond"},
	{16, 1200, 500, "Crown Legend"},
}

// Milestones returns the schedule in ascending level order.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneByLevel returns the milestone for a level, if it exists.
func MilestoneByLevel(level int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Level == level {
			return m, true
		}
	}
	return Milestone{}, false
}

// WithdrawalTier is the amount rule applied to the Nth withdrawal.
type WithdrawalTier struct {
	RequiredAmount int64
	// Exact requires the amount to match RequiredAmount exactly; otherwise
	// RequiredAmount is a minimum.
	Exact bool
}

// WithdrawalTierFor returns the tier for a given prior withdrawal count.
func WithdrawalTierFor(withdrawalCount int) WithdrawalTier {
	switch withdrawalCount {
	case 0:
		return WithdrawalTier{RequiredAmount: 143, Exact: true} // $0.5
	case 1:
		return WithdrawalTier{RequiredAmount: 285, Exact: true} // $1
	case 2:
		return WithdrawalTier{RequiredAmount: 855, Exact: true} // $3
	default:
		return WithdrawalTier{RequiredAmount: 1400, Exact: false} // $5 minimum
	}
}

// ProcessingFee is the flat 1% withdrawal fee, rounded half-up to a whole
// rupee. It is added to the deduction, never taken from the payout.
func ProcessingFee(amount int64) int64 {
	return (amount + 50) / 100
}

// SpinnerPrize is one slot of the weighted prize table.
type SpinnerPrize struct {
	ValueUSD float64
	Weight   float64
	TryAgain bool
}

// RewardPKR converts the prize value to whole PKR at the fixed rate.
func (p SpinnerPrize) RewardPKR() int64 {
	return int64(math.Round(p.ValueUSD * USDToPKR))
}

// spinnerPrizes is walked in this exact order during a draw; the ordering
// is part of the selection contract at weight boundaries.
var spinnerPrizes = []SpinnerPrize{
	{ValueUSD: 0.5, Weight: 2},
	{ValueUSD: 0.1, Weight: 2},
	{ValueUSD: 0.2, Weight: 2},
	{ValueUSD: 0.6, Weight: 1},
	{ValueUSD: 0.8, Weight: 1},
	{ValueUSD: 1, Weight: 1},
	{ValueUSD: 3, Weight: 0.1},
	{ValueUSD: 5, Weight: 0.1},
	{TryAgain: true, Weight: 90.8},
}

// SpinnerPrizes returns the prize table in draw order.
func SpinnerPrizes() []SpinnerPrize {
	out := make([]SpinnerPrize, len(spinnerPrizes))
	copy(out, spinnerPrizes)
	return out
}

// SpinnerTotalWeight is the sum of all prize weights.
func SpinnerTotalWeight() float64 {
	var total float64
	for _, p := range spinnerPrizes {
		total += p.Weight
	}
	return total
}
