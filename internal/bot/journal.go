package bot

import (
	"time"

	"github.com/matheuscscp/groupsplit/models"
)

type (
	// Journal receives ledger changes after they are applied. Implementations
	// must not block.
	Journal interface {
		Record(event models.LedgerEvent)
	}

	nopJournal struct{}

	// turn carries the state of one event being handled for a user.
	turn struct {
		userID  UserID
		sess    *session
		now     time.Time
		records []models.LedgerEvent
	}
)

func (nopJournal) Record(models.LedgerEvent) {}

func (t *turn) record(kind models.LedgerEventKind, group *models.Group, expense *models.Expense) {
	ev := models.LedgerEvent{
		Kind:       kind,
		UserID:     int64(t.userID),
		OccurredAt: t.now,
	}
	if group != nil {
		ev.Participants = append([]string(nil), group.Participants...)
		ev.Currency = group.Currency
	}
	if expense != nil {
		e := *expense
		ev.Expense = &e
	}
	t.records = append(t.records, ev)
}
