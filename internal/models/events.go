package models

import "time"

// Event names carried on the notification channel.
const (
	EventBalanceChanged   = "balanceUpdate"
	EventMilestoneReached = "levelUpNotification"
	EventRequestCreated   = "newRequest"
	EventRequestResolved  = "requestUpdated"
	EventAccountUpdated   = "userUpdated"

	EventPasswordResetCreated = "newPasswordRequest"
)

// BalanceChangedEvent is emitted after every committed ledger mutation.
type BalanceChangedEvent struct {
	AccountID   string       `json:"userId"`
	NewBalance  int64        `json:"newBalance"`
	Transaction *Transaction `json:"transaction"`
}

// MilestoneReachedEvent is emitted when a referrer crosses a milestone.
type MilestoneReachedEvent struct {
	AccountID    string `json:"userId"`
	Level        int    `json:"level"`
	LevelName    string `json:"levelName"`
	Members      int    `json:"members"`
	RewardAmount int64  `json:"reward"`
}

// RequestResolvedEvent is emitted once per request resolution.
type RequestResolvedEvent struct {
	RequestID  string        `json:"id"`
	Status     RequestStatus `json:"status"`
	ResolvedAt time.Time     `json:"resolvedAt"`
}

// RequestCreatedEvent is emitted when intake files a new request.
type RequestCreatedEvent struct {
	Request *Request `json:"request"`
}
