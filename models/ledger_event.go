package models

import "time"

type (
	// LedgerEventKind ...
	LedgerEventKind string

	// LedgerEvent describes a change applied to a group.
	LedgerEvent struct {
		Kind         LedgerEventKind `json:"kind"`
		UserID       int64           `json:"userID"`
		OccurredAt   time.Time       `json:"occurredAt"`
		Participants []string        `json:"participants,omitempty"`
		Currency     string          `json:"currency,omitempty"`
		Expense      *Expense        `json:"expense,omitempty"`
	}
)

const (
	GroupCreated    LedgerEventKind = "group_created"
	GroupDeleted    LedgerEventKind = "group_deleted"
	ExpenseAdded    LedgerEventKind = "expense_added"
	ExpenseDeleted  LedgerEventKind = "expense_deleted"
	ExpensesCleared LedgerEventKind = "expenses_cleared"
)
