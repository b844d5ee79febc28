package models

import "math"

// Epsilon is the tolerance under which a balance counts as settled.
const Epsilon = 1e-6

type (
	// Balance is the net position of one participant: positive means the
	// participant should receive money, negative means they owe money.
	Balance struct {
		Name   string
		Amount float64
	}

	// Balances are kept in roster order.
	Balances []Balance
)

// ComputeBalances splits every expense equally among its payers (credit) and
// its payees (debit). Every roster name starts at zero.
func ComputeBalances(roster []string, expenses []*Expense) Balances {
	balances := make(Balances, 0, len(roster))
	index := make(map[string]int, len(roster))
	for _, name := range roster {
		if _, ok := index[name]; ok {
			continue
		}
		index[name] = len(balances)
		balances = append(balances, Balance{Name: name})
	}
	add := func(name string, amount float64) {
		i, ok := index[name]
		if !ok {
			i = len(balances)
			index[name] = i
			balances = append(balances, Balance{Name: name})
		}
		balances[i].Amount += amount
	}

	for _, e := range expenses {
		if len(e.Payers) == 0 || len(e.Payees) == 0 {
			continue
		}
		paid := e.Amount / float64(len(e.Payers))
		for _, payer := range e.Payers {
			add(payer, paid)
		}
		owed := e.Amount / float64(len(e.Payees))
		for _, payee := range e.Payees {
			add(payee, -owed)
		}
	}
	return balances
}

// Of returns the balance of name, or zero if name is unknown.
func (b Balances) Of(name string) float64 {
	for _, bal := range b {
		if bal.Name == name {
			return bal.Amount
		}
	}
	return 0
}

// Total is the sum of all balances. It is zero up to floating-point error.
func (b Balances) Total() (total float64) {
	for _, bal := range b {
		total += bal.Amount
	}
	return
}

// Settled tells whether every balance is within Epsilon of zero.
func (b Balances) Settled() bool {
	for _, bal := range b {
		if math.Abs(bal.Amount) >= Epsilon {
			return false
		}
	}
	return true
}
