package models

import (
	"fmt"
	"math"
	"strings"
)

type (
	// Group holds the roster, the currency and the expense ledger of one user's
	// group. Participants keep the order in which they were entered.
	Group struct {
		Participants []string   `yaml:"participants" json:"participants"`
		Currency     string     `yaml:"currency" json:"currency"`
		Expenses     []*Expense `yaml:"expenses" json:"expenses"`
	}
)

// NewGroup ...
func NewGroup(names []string, currency string) (*Group, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: a group needs at least one participant", ErrInvalidInput)
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: currency is empty", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: participant name is empty", ErrInvalidInput)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: participant '%s' appears twice", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}
	}
	return &Group{
		Participants: append([]string(nil), names...),
		Currency:     currency,
	}, nil
}

// Has tells whether name is in the roster. Matching is exact.
func (g *Group) Has(name string) bool {
	return g.indexOf(name) >= 0
}

func (g *Group) indexOf(name string) int {
	for i, p := range g.Participants {
		if p == name {
			return i
		}
	}
	return -1
}

// AddExpense validates and appends a new expense to the ledger.
func (g *Group) AddExpense(payers, payees []string, description string, amount float64) (*Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is empty", ErrInvalidInput)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}
	normPayers, err := g.normalize(payers, "payer")
	if err != nil {
		return nil, err
	}
	normPayees, err := g.normalize(payees, "payee")
	if err != nil {
		return nil, err
	}
	expense := &Expense{
		ID:          newExpenseID(),
		Payers:      normPayers,
		Payees:      normPayees,
		Description: description,
		Amount:      amount,
	}
	g.Expenses = append(g.Expenses, expense)
	return expense, nil
}

// normalize checks that names is a non-empty subset of the roster and returns
// it deduplicated and in roster order.
func (g *Group) normalize(names []string, role string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one %s is required", ErrInvalidInput, role)
	}
	selected := make([]bool, len(g.Participants))
	for _, name := range names {
		idx := g.indexOf(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s '%s' is not in the group", ErrInvalidInput, role, name)
		}
		selected[idx] = true
	}
	var res []string
	for i, ok := range selected {
		if ok {
			res = append(res, g.Participants[i])
		}
	}
	return res, nil
}

// DeleteExpenseAt removes and returns the expense at the given 1-based index.
func (g *Group) DeleteExpenseAt(index int) (*Expense, error) {
	if index < 1 || index > len(g.Expenses) {
		return nil, fmt.Errorf("%w: expense %d does not exist, there are %d", ErrOutOfRange, index, len(g.Expenses))
	}
	deleted := g.Expenses[index-1]
	g.Expenses = append(g.Expenses[:index-1:index-1], g.Expenses[index:]...)
	return deleted, nil
}

// ClearExpenses empties the ledger.
func (g *Group) ClearExpenses() {
	g.Expenses = nil
}

// Balances computes the net balance of every participant.
func (g *Group) Balances() Balances {
	return ComputeBalances(g.Participants, g.Expenses)
}

// Clone returns a deep copy of the group, safe to hand to another goroutine.
func (g *Group) Clone() *Group {
	c := &Group{
		Participants: append([]string(nil), g.Participants...),
		Currency:     g.Currency,
		Expenses:     make([]*Expense, 0, len(g.Expenses)),
	}
	for _, e := range g.Expenses {
		ce := *e
		ce.Payers = append([]string(nil), e.Payers...)
		ce.Payees = append([]string(nil), e.Payees...)
		c.Expenses = append(c.Expenses, &ce)
	}
	return c
}
