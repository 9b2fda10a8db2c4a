package services

import (
	"fmt"

	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/rewards"
)

// Withdrawal policy is stateless: pure functions over the tier schedule
// and an account snapshot. The Nth withdrawal ever *requested* (not
// approved) determines the applicable tier.

// RequiredWithdrawalAmount returns the tier amount for the next withdrawal
// and whether the amount must match exactly or is a minimum.
func RequiredWithdrawalAmount(withdrawalCount int) (int64, bool) {
	tier := rewards.WithdrawalTierFor(withdrawalCount)
	return tier.RequiredAmount, tier.Exact
}

// WithdrawalDeduction returns the 1% processing fee and the total debited
// from the balance at filing time. The fee is added on top of the payout,
// never taken out of it.
func WithdrawalDeduction(amount int64) (fee, total int64) {
	fee = rewards.ProcessingFee(amount)
	return fee, amount + fee
}

// ValidateWithdrawal checks a requested amount against the tier rule and
// the balance (fee included). It performs no mutation.
func ValidateWithdrawal(withdrawalCount int, amount, balance int64) error {
	tier := rewards.WithdrawalTierFor(withdrawalCount)
	if tier.Exact {
		if amount != tier.RequiredAmount {
			return fmt.Errorf("%w: %s withdrawal must be exactly ₨%d",
				models.ErrAmountMismatch, withdrawalOrdinal(withdrawalCount+1), tier.RequiredAmount)
		}
	} else if amount < tier.RequiredAmount {
		return fmt.Errorf("%w: %s withdrawal minimum amount is ₨%d",
			models.ErrBelowMinimum, withdrawalOrdinal(withdrawalCount+1), tier.RequiredAmount)
	}

	_, total := WithdrawalDeduction(amount)
	if balance < total {
		return fmt.Errorf("%w: required ₨%d including 1%% processing fee, balance is ₨%d",
			models.ErrInsufficientBalance, total, balance)
	}
	return nil
}

func withdrawalOrdinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return "4th+"
	}
}
