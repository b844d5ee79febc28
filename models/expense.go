package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type (
	// Expense is an immutable ledger entry. Payers and Payees are kept in roster
	// order without duplicates.
	Expense struct {
		ID          string   `yaml:"id" json:"id"`
		Payers      []string `yaml:"payers" json:"payers"`
		Payees      []string `yaml:"payees" json:"payees"`
		Description string   `yaml:"description" json:"description"`
		Amount      float64  `yaml:"amount" json:"amount"`
	}
)

// Format renders the expense as a single summary line, e.g. "dinner - 90.00 SGD".
func (e *Expense) Format(currency string) string {
	return fmt.Sprintf("%s - %s %s", e.Description, FormatAmount(e.Amount), currency)
}

// FormatDetailed renders the expense with its payers and payees on separate
// indented lines, prefixed by its 1-based position in the ledger.
func (e *Expense) FormatDetailed(position int, currency string) string {
	return fmt.Sprintf("%d. %s\n   Paid by: %s\n   For: %s",
		position,
		e.Format(currency),
		strings.Join(e.Payers, ", "),
		strings.Join(e.Payees, ", "),
	)
}

func newExpenseID() string {
	return uuid.NewString()
}
