package bot

import (
	"strconv"
	"strings"

	"github.com/matheuscscp/groupsplit/models"
)

type awaitingDeleteIndex struct{}

func (awaitingDeleteIndex) name() string { return "awaiting_delete_index" }

func (s awaitingDeleteIndex) onText(t *turn, text string) (step, Instruction) {
	group := t.sess.group
	if group == nil || len(group.Expenses) == 0 {
		return nil, newMessage(msgNoExpensesToDelete)
	}
	index, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return s, newMessage(msgInvalidDeleteIndex)
	}
	deleted, err := group.DeleteExpenseAt(index)
	if err != nil {
		return s, newMessage(msgInvalidDeleteIndex)
	}
	t.record(models.ExpenseDeleted, group, deleted)
	return nil, newMessage(msgExpenseDeleted, deleted.Format(group.Currency))
}
