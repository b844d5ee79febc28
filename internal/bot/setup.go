package bot

import (
	"strconv"
	"strings"

	"github.com/matheuscscp/groupsplit/models"
)

type (
	askingParticipantCount struct{}

	askingParticipantNames struct {
		total int
		names []string
	}

	askingCurrency struct {
		names []string
	}
)

func (askingParticipantCount) name() string { return "asking_participant_count" }
func (askingParticipantNames) name() string { return "asking_participant_names" }
func (askingCurrency) name() string         { return "asking_currency" }

func (s askingParticipantCount) onText(t *turn, text string) (step, Instruction) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return s, newMessage(msgInvalidCount)
	}
	return askingParticipantNames{total: n}, newMessage(msgAskName, 1)
}

func (s askingParticipantNames) onText(t *turn, text string) (step, Instruction) {
	name := strings.TrimSpace(text)
	position := len(s.names) + 1
	if name == "" {
		return s, newMessage(msgEmptyName, position)
	}
	for _, n := range s.names {
		if n == name {
			return s, newMessage(msgDuplicateName, name, position)
		}
	}

	names := make([]string, len(s.names), len(s.names)+1)
	copy(names, s.names)
	names = append(names, name)
	if len(names) < s.total {
		return askingParticipantNames{total: s.total, names: names}, newMessage(msgAskName, len(names)+1)
	}
	return askingCurrency{names: names}, newMessage(msgAskCurrency)
}

func (s askingCurrency) onText(t *turn, text string) (step, Instruction) {
	currency := strings.ToUpper(strings.TrimSpace(text))
	group, err := models.NewGroup(s.names, currency)
	if err != nil {
		return s, newMessage(msgInvalidCurrency)
	}
	t.sess.group = group
	t.record(models.GroupCreated, group, nil)
	return nil, newMessage(msgSetupComplete, strings.Join(group.Participants, ", "), group.Currency)
}
