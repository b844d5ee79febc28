package models_test

import (
	"testing"

	"github.com/matheuscscp/groupsplit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup(t *testing.T) *models.Group {
	t.Helper()
	g, err := models.NewGroup([]string{"A", "B", "C"}, "SGD")
	require.NoError(t, err)
	return g
}

func TestNewGroup(t *testing.T) {
	names := []string{"A", "B", "C"}
	g, err := models.NewGroup(names, "SGD")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, g.Participants)
	assert.Equal(t, "SGD", g.Currency)
	assert.Empty(t, g.Expenses)

	names[0] = "Z"
	assert.Equal(t, "A", g.Participants[0])
}

func TestNewGroupRejectsInvalidInput(t *testing.T) {
	for _, tt := range []struct {
		name     string
		names    []string
		currency string
	}{
		{name: "no names", names: nil, currency: "SGD"},
		{name: "empty currency", names: []string{"A"}, currency: ""},
		{name: "blank currency", names: []string{"A"}, currency: "  "},
		{name: "empty name", names: []string{"A", ""}, currency: "SGD"},
		{name: "duplicate name", names: []string{"A", "A"}, currency: "SGD"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			tt := tt
			t.Parallel()

			_, err := models.NewGroup(tt.names, tt.currency)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestAddExpense(t *testing.T) {
	g := newTestGroup(t)

	e, err := g.AddExpense([]string{"C", "A", "C"}, []string{"B"}, "  dinner ", 90)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, []string{"A", "C"}, e.Payers)
	assert.Equal(t, []string{"B"}, e.Payees)
	assert.Equal(t, "dinner", e.Description)
	require.Len(t, g.Expenses, 1)
	assert.Same(t, e, g.Expenses[0])
}

func TestAddExpenseRejectsInvalidInput(t *testing.T) {
	for _, tt := range []struct {
		name        string
		payers      []string
		payees      []string
		description string
		amount      float64
	}{
		{name: "zero amount", payers: []string{"A"}, payees: []string{"B"}, description: "x", amount: 0},
		{name: "negative amount", payers: []string{"A"}, payees: []string{"B"}, description: "x", amount: -1},
		{name: "no payers", payers: nil, payees: []string{"B"}, description: "x", amount: 1},
		{name: "no payees", payers: []string{"A"}, payees: nil, description: "x", amount: 1},
		{name: "empty description", payers: []string{"A"}, payees: []string{"B"}, description: " ", amount: 1},
		{name: "unknown payer", payers: []string{"D"}, payees: []string{"B"}, description: "x", amount: 1},
		{name: "unknown payee", payers: []string{"A"}, payees: []string{"b"}, description: "x", amount: 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGroup(t)
			_, err := g.AddExpense(tt.payers, tt.payees, tt.description, tt.amount)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Empty(t, g.Expenses)
		})
	}
}

func TestDeleteExpenseAt(t *testing.T) {
	g := newTestGroup(t)
	for _, desc := range []string{"one", "two", "three"} {
		_, err := g.AddExpense([]string{"A"}, []string{"B"}, desc, 1)
		require.NoError(t, err)
	}

	_, err := g.DeleteExpenseAt(0)
	assert.ErrorIs(t, err, models.ErrOutOfRange)
	_, err = g.DeleteExpenseAt(4)
	assert.ErrorIs(t, err, models.ErrOutOfRange)

	deleted, err := g.DeleteExpenseAt(2)
	require.NoError(t, err)
	assert.Equal(t, "two", deleted.Description)
	require.Len(t, g.Expenses, 2)
	assert.Equal(t, "one", g.Expenses[0].Description)
	assert.Equal(t, "three", g.Expenses[1].Description)
}

func TestDeleteExpenseAtOnEmptyLedger(t *testing.T) {
	g := newTestGroup(t)
	_, err := g.DeleteExpenseAt(1)
	assert.ErrorIs(t, err, models.ErrOutOfRange)
}

func TestClearExpenses(t *testing.T) {
	g := newTestGroup(t)
	g.ClearExpenses()
	assert.Empty(t, g.Expenses)

	_, err := g.AddExpense([]string{"A"}, []string{"B"}, "x", 1)
	require.NoError(t, err)
	g.ClearExpenses()
	assert.Empty(t, g.Expenses)
}

func TestCloneIsDeep(t *testing.T) {
	g := newTestGroup(t)
	_, err := g.AddExpense([]string{"A"}, []string{"B"}, "x", 1)
	require.NoError(t, err)

	c := g.Clone()
	c.Participants[0] = "Z"
	c.Expenses[0].Payers[0] = "Z"
	c.Expenses[0].Description = "y"

	assert.Equal(t, "A", g.Participants[0])
	assert.Equal(t, "A", g.Expenses[0].Payers[0])
	assert.Equal(t, "x", g.Expenses[0].Description)
}

func TestExpenseFormatDetailed(t *testing.T) {
	g := newTestGroup(t)
	e, err := g.AddExpense([]string{"A"}, []string{"A", "B", "C"}, "dinner", 90)
	require.NoError(t, err)

	assert.Equal(t, "dinner - 90.00 SGD", e.Format(g.Currency))
	assert.Equal(t, "1. dinner - 90.00 SGD\n   Paid by: A\n   For: A, B, C", e.FormatDetailed(1, g.Currency))
}
