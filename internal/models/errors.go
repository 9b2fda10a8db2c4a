package models

import "errors"

// Domain errors are pure, no infrastructure dependency. Services wrap them
// with context; handlers match them with errors.Is.
var (
	// Ledger errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Withdrawal policy errors
	ErrAmountMismatch = errors.New("withdrawal amount does not match the required tier amount")
	ErrBelowMinimum   = errors.New("withdrawal amount is below the tier minimum")

	// Daily limiter errors
	ErrAlreadyActedToday = errors.New("daily action limit reached")
	ErrAlreadySpunToday  = errors.New("spinner already used in the last 24 hours")

	// Request workflow errors
	ErrRequestNotFound        = errors.New("request not found")
	ErrRequestAlreadyResolved = errors.New("request already resolved")

	// ErrDuplicateMilestone is a defensive guard violation. It is logged
	// and skipped by the referral engine, never surfaced to a user.
	ErrDuplicateMilestone = errors.New("milestone level already paid out")
)
