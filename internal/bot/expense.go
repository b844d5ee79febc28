package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matheuscscp/groupsplit/models"

	"github.com/sirupsen/logrus"
)

const (
	payerPrefix = "payer"
	payeePrefix = "payee"
	donePayers  = "done_payers"
	donePayees  = "done_payees"
)

type (
	// selection is a toggle set over a roster snapshot taken when the expense
	// flow started. It is copied on every change.
	selection struct {
		roster []string
		picked map[string]struct{}
	}

	selectingPayers struct {
		sel selection
	}

	selectingPayees struct {
		payers []string
		sel    selection
	}

	enteringDescription struct {
		payers []string
		payees []string
	}

	enteringAmount struct {
		payers      []string
		payees      []string
		description string
	}
)

func newSelection(roster []string) selection {
	return selection{roster: append([]string(nil), roster...)}
}

func (s selection) has(name string) bool {
	_, ok := s.picked[name]
	return ok
}

func (s selection) empty() bool {
	return len(s.picked) == 0
}

// done checks that the selection can be confirmed.
func (s selection) done(role string) error {
	if s.empty() {
		return fmt.Errorf("%w: select at least one %s", models.ErrValidation, role)
	}
	return nil
}

// toggle adds or removes the roster entry at i.
func (s selection) toggle(i int) selection {
	name := s.roster[i]
	picked := make(map[string]struct{}, len(s.picked)+1)
	for n := range s.picked {
		picked[n] = struct{}{}
	}
	if s.has(name) {
		delete(picked, name)
	} else {
		picked[name] = struct{}{}
	}
	return selection{roster: s.roster, picked: picked}
}

// names returns the picked names in roster order.
func (s selection) names() []string {
	var names []string
	for _, n := range s.roster {
		if s.has(n) {
			names = append(names, n)
		}
	}
	return names
}

// parse resolves callback data like "payer:2" into a roster index.
func (s selection) parse(prefix, data string) (int, bool) {
	p, idx, ok := strings.Cut(data, ":")
	if !ok || p != prefix {
		return 0, false
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(s.roster) {
		return 0, false
	}
	return i, true
}

func (s selection) buttons(prefix, done string) []Button {
	buttons := make([]Button, 0, len(s.roster)+1)
	for i, name := range s.roster {
		label := name
		if s.has(name) {
			label = labelChecked + name
		}
		buttons = append(buttons, Button{Label: label, Data: prefix + ":" + strconv.Itoa(i)})
	}
	return append(buttons, Button{Label: labelDone, Data: done, Wide: true})
}

func (selectingPayers) name() string     { return "selecting_payers" }
func (selectingPayees) name() string     { return "selecting_payees" }
func (enteringDescription) name() string { return "entering_description" }
func (enteringAmount) name() string      { return "entering_amount" }

func (s selectingPayers) view() Instruction {
	return Instruction{Kind: NewMessage, Text: msgAskPayers, Options: s.sel.buttons(payerPrefix, donePayers)}
}

func (s selectingPayers) onClick(t *turn, data string) (step, Instruction) {
	if data == donePayers {
		if err := s.sel.done(payerPrefix); err != nil {
			logrus.WithField("user_id", t.userID).Debug(err)
			return s, alert(msgSelectPayer)
		}
		next := selectingPayees{payers: s.sel.names(), sel: newSelection(s.sel.roster)}
		return next, editMessage(msgAskPayees, next.sel.buttons(payeePrefix, donePayees))
	}
	i, ok := s.sel.parse(payerPrefix, data)
	if !ok {
		return s, alert(msgStaleButton)
	}
	s.sel = s.sel.toggle(i)
	return s, editMessage(msgAskPayers, s.sel.buttons(payerPrefix, donePayers))
}

func (s selectingPayees) view() Instruction {
	return Instruction{Kind: NewMessage, Text: msgAskPayees, Options: s.sel.buttons(payeePrefix, donePayees)}
}

func (s selectingPayees) onClick(t *turn, data string) (step, Instruction) {
	if data == donePayees {
		if err := s.sel.done(payeePrefix); err != nil {
			logrus.WithField("user_id", t.userID).Debug(err)
			return s, alert(msgSelectPayee)
		}
		return enteringDescription{payers: s.payers, payees: s.sel.names()}, editMessage(msgAskDescription, nil)
	}
	i, ok := s.sel.parse(payeePrefix, data)
	if !ok {
		return s, alert(msgStaleButton)
	}
	s.sel = s.sel.toggle(i)
	return s, editMessage(msgAskPayees, s.sel.buttons(payeePrefix, donePayees))
}

func (s enteringDescription) onText(t *turn, text string) (step, Instruction) {
	description := strings.TrimSpace(text)
	if description == "" {
		return s, newMessage(msgInvalidDescription)
	}
	return enteringAmount{payers: s.payers, payees: s.payees, description: description}, newMessage(msgAskAmount)
}

func (s enteringAmount) onText(t *turn, text string) (step, Instruction) {
	amount, err := models.ParseAmount(text)
	if err != nil {
		return s, newMessage(msgInvalidAmount)
	}
	group := t.sess.group
	if group == nil {
		return nil, newMessage(msgNoGroupForAdd)
	}
	expense, err := group.AddExpense(s.payers, s.payees, s.description, amount)
	if err != nil {
		logrus.WithField("user_id", t.userID).Warnf("error adding expense: %v", err)
		return nil, newMessage(msgExpenseRejected, err)
	}
	t.record(models.ExpenseAdded, group, expense)
	return nil, newMessage(msgExpenseAdded, expense.Format(group.Currency))
}
