package bot

import (
	"fmt"
	"time"

	"github.com/matheuscscp/groupsplit/internal/metrics"
	"github.com/matheuscscp/groupsplit/models"

	"github.com/sirupsen/logrus"
)

type (
	// Bot turns user events and commands into group mutations and rendering
	// instructions. Events of the same user are handled one at a time, events
	// of different users run in parallel.
	Bot struct {
		store   *store
		journal Journal
		ttl     time.Duration
		now     func() time.Time
	}

	// step is a state of a multi-step flow. A nil step means the user is idle.
	step interface {
		name() string
	}

	// textStep is a step waiting for typed input.
	textStep interface {
		step
		onText(t *turn, text string) (step, Instruction)
	}

	// clickStep is a step waiting for button clicks.
	clickStep interface {
		step
		onClick(t *turn, data string) (step, Instruction)
		view() Instruction
	}

	// Command is a named entry point of the bot.
	Command struct {
		Name        string
		Description string
		run         func(b *Bot, userID UserID) []Instruction
	}
)

var commands = []Command{
	{Name: "start", Description: "Start the bot", run: (*Bot).StartSetup},
	{Name: "add", Description: "Add an expense", run: (*Bot).AddExpense},
	{Name: "view", Description: "View expenses", run: (*Bot).ViewExpenses},
	{Name: "settleup", Description: "Settle expenses", run: (*Bot).SettleUp},
	{Name: "deleteexpense", Description: "Delete an expense", run: (*Bot).DeleteExpense},
	{Name: "clear_expenses", Description: "Clear all expenses", run: (*Bot).ClearExpenses},
	{Name: "deletegroup", Description: "Delete the group", run: (*Bot).DeleteGroup},
	{Name: "abort", Description: "Abort the current operation", run: (*Bot).Abort},
}

// New creates a bot. A nil journal discards ledger events. A positive
// conversationTTL drops flows left untouched for longer than that.
func New(journal Journal, conversationTTL time.Duration) *Bot {
	if journal == nil {
		journal = nopJournal{}
	}
	return &Bot{
		store:   newStore(),
		journal: journal,
		ttl:     conversationTTL,
		now:     time.Now,
	}
}

// Commands lists the commands understood by Command.
func Commands() []Command {
	return append([]Command(nil), commands...)
}

// Command runs the command called name. It returns false if there is no such
// command.
func (b *Bot) Command(userID UserID, name string) ([]Instruction, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c.run(b, userID), true
		}
	}
	return nil, false
}

// handle runs fn with exclusive access to the user's session, then publishes
// whatever ledger events fn recorded.
func (b *Bot) handle(userID UserID, kind string, fn func(t *turn) Instruction) []Instruction {
	metrics.EventsHandled.WithLabelValues(kind).Inc()
	log := logrus.WithField("user_id", userID)

	var instr Instruction
	var records []models.LedgerEvent
	b.store.with(userID, func(sess *session) {
		now := b.now()
		if sess.conv != nil && b.ttl > 0 && now.Sub(sess.touched) > b.ttl {
			log.WithField("step", sess.conv.name()).Info("dropping expired conversation")
			sess.conv = nil
			metrics.ExpiredConversations.Inc()
			metrics.ActiveConversations.Dec()
		}

		active := sess.conv != nil
		t := &turn{userID: userID, sess: sess, now: now}
		instr = fn(t)
		sess.touched = now
		records = t.records

		switch {
		case !active && sess.conv != nil:
			metrics.ActiveConversations.Inc()
		case active && sess.conv == nil:
			metrics.ActiveConversations.Dec()
		}
		stepName := "idle"
		if sess.conv != nil {
			stepName = sess.conv.name()
		}
		log.WithField("step", stepName).Debugf("handled %s", kind)
	})

	for _, r := range records {
		b.journal.Record(r)
	}
	instr.UserID = userID
	metrics.InstructionsEmitted.WithLabelValues(instr.Kind.String()).Inc()
	return []Instruction{instr}
}

// HandleEvent feeds a text or a button click to the user's current flow.
func (b *Bot) HandleEvent(ev Event) []Instruction {
	return b.handle(ev.UserID, ev.Kind.String(), func(t *turn) Instruction {
		var next step
		var instr Instruction
		switch cur := t.sess.conv.(type) {
		case nil:
			if ev.Kind == EventButtonClick {
				return alert(msgStaleButton)
			}
			return newMessage(helpText())
		case textStep:
			if ev.Kind != EventText {
				return alert(msgStaleButton)
			}
			next, instr = cur.onText(t, ev.Payload)
		case clickStep:
			if ev.Kind != EventButtonClick {
				return cur.view()
			}
			next, instr = cur.onClick(t, ev.Payload)
		default:
			panic(fmt.Sprintf("step %s handles neither text nor clicks", cur.name()))
		}
		t.sess.conv = next
		return instr
	})
}

// StartSetup begins the group setup flow. Completing it replaces any
// existing group.
func (b *Bot) StartSetup(userID UserID) []Instruction {
	return b.handle(userID, "start", func(t *turn) Instruction {
		t.sess.conv = askingParticipantCount{}
		return newMessage(msgAskCount)
	})
}

// AddExpense begins the expense entry flow.
func (b *Bot) AddExpense(userID UserID) []Instruction {
	return b.handle(userID, "add", func(t *turn) Instruction {
		if t.sess.group == nil {
			return newMessage(msgNoGroupForAdd)
		}
		s := selectingPayers{sel: newSelection(t.sess.group.Participants)}
		t.sess.conv = s
		return s.view()
	})
}

// ViewExpenses lists the ledger.
func (b *Bot) ViewExpenses(userID UserID) []Instruction {
	return b.handle(userID, "view", func(t *turn) Instruction {
		g := t.sess.group
		if g == nil || len(g.Expenses) == 0 {
			return newMessage(msgNoExpenses)
		}
		return newMessage(formatExpenses(g))
	})
}

// SettleUp reports balances and the suggested payments.
func (b *Bot) SettleUp(userID UserID) []Instruction {
	return b.handle(userID, "settleup", func(t *turn) Instruction {
		g := t.sess.group
		if g == nil || len(g.Expenses) == 0 {
			return newMessage(msgNothingToSettle)
		}
		return newMessage(formatSettlement(g))
	})
}

// DeleteExpense lists the ledger and waits for the number of the expense to
// delete.
func (b *Bot) DeleteExpense(userID UserID) []Instruction {
	return b.handle(userID, "deleteexpense", func(t *turn) Instruction {
		g := t.sess.group
		if g == nil || len(g.Expenses) == 0 {
			return newMessage(msgNoExpensesToDelete)
		}
		t.sess.conv = awaitingDeleteIndex{}
		return newMessage(msgAskDeleteIndex, formatExpenses(g))
	})
}

// ClearExpenses empties the ledger and keeps the roster.
func (b *Bot) ClearExpenses(userID UserID) []Instruction {
	return b.handle(userID, "clear_expenses", func(t *turn) Instruction {
		g := t.sess.group
		if g == nil {
			return newMessage(msgNoGroup)
		}
		if len(g.Expenses) > 0 {
			g.ClearExpenses()
			t.record(models.ExpensesCleared, g, nil)
		}
		return newMessage(msgCleared)
	})
}

// DeleteGroup forgets the group and any flow in progress.
func (b *Bot) DeleteGroup(userID UserID) []Instruction {
	return b.handle(userID, "deletegroup", func(t *turn) Instruction {
		if g := t.sess.group; g != nil {
			t.record(models.GroupDeleted, g, nil)
		}
		t.sess.group = nil
		t.sess.conv = nil
		return newMessage(msgGroupDeleted)
	})
}

// Abort drops the flow in progress, if any.
func (b *Bot) Abort(userID UserID) []Instruction {
	return b.handle(userID, "abort", func(t *turn) Instruction {
		if t.sess.conv == nil {
			return newMessage(msgNothingToAbort)
		}
		t.sess.conv = nil
		return newMessage(msgAborted)
	})
}

// Group returns a copy of the user's group.
func (b *Bot) Group(userID UserID) (group *models.Group, err error) {
	b.store.with(userID, func(sess *session) {
		if sess.group == nil {
			err = fmt.Errorf("%w: no group was set up", models.ErrPreconditionFailed)
			return
		}
		group = sess.group.Clone()
	})
	return
}
