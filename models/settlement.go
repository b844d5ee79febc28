package models

import (
	"fmt"
	"math"
	"sort"
)

type (
	// Settlement is a single payment from a debtor to a creditor.
	Settlement struct {
		From   string
		To     string
		Amount float64
	}

	party struct {
		name      string
		order     int
		remaining float64
	}
)

// Format ...
func (s Settlement) Format(currency string) string {
	return fmt.Sprintf("%s pays %s %s %s", s.From, s.To, FormatAmount(s.Amount), currency)
}

// Plan greedily matches the largest debtor with the largest creditor until
// every balance is settled. Equal balances keep their order in b. The plan has
// at most creditors+debtors-1 payments.
func Plan(b Balances) (plan []Settlement) {
	var creditors, debtors []*party
	for i, bal := range b {
		switch {
		case bal.Amount >= Epsilon:
			creditors = append(creditors, &party{bal.Name, i, bal.Amount})
		case bal.Amount <= -Epsilon:
			debtors = append(debtors, &party{bal.Name, i, bal.Amount})
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		if creditors[i].remaining != creditors[j].remaining {
			return creditors[i].remaining > creditors[j].remaining
		}
		return creditors[i].order < creditors[j].order
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		if debtors[i].remaining != debtors[j].remaining {
			return debtors[i].remaining < debtors[j].remaining
		}
		return debtors[i].order < debtors[j].order
	})

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]
		amount := math.Min(-debtor.remaining, creditor.remaining)
		plan = append(plan, Settlement{
			From:   debtor.name,
			To:     creditor.name,
			Amount: amount,
		})
		debtor.remaining += amount
		creditor.remaining -= amount
		if math.Abs(debtor.remaining) < Epsilon {
			i++
		}
		if math.Abs(creditor.remaining) < Epsilon {
			j++
		}
	}
	return
}
