package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/matheuscscp/groupsplit/internal/metrics"
	"github.com/matheuscscp/groupsplit/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	journalBufferSize     = 256
	journalPublishTimeout = 10 * time.Second
)

type (
	// Journal publishes ledger events to a topic from a single background
	// goroutine. Events of a user share an ordering key, so subscribers see
	// them in the order they were recorded.
	Journal struct {
		svc     Service
		topicID string
		events  chan models.LedgerEvent
		done    chan struct{}
	}

	// Message is the JSON payload of a published ledger event.
	Message struct {
		ID string `json:"id"`
		models.LedgerEvent
	}
)

// NewJournal starts the publishing goroutine. Close must be called to flush it.
func NewJournal(svc Service, topicID string) *Journal {
	j := &Journal{
		svc:     svc,
		topicID: topicID,
		events:  make(chan models.LedgerEvent, journalBufferSize),
		done:    make(chan struct{}),
	}
	go j.run()
	return j
}

// Record queues ev for publishing. Events are dropped when the queue is full.
func (j *Journal) Record(ev models.LedgerEvent) {
	select {
	case j.events <- ev:
	default:
		metrics.LedgerEventsPublished.WithLabelValues("dropped").Inc()
		logrus.WithField("user_id", ev.UserID).Warnf("journal queue is full, dropping %s event", ev.Kind)
	}
}

// Close waits for queued events to be published.
func (j *Journal) Close() {
	close(j.events)
	<-j.done
}

func (j *Journal) run() {
	defer close(j.done)
	for ev := range j.events {
		j.publish(ev)
	}
}

func (j *Journal) publish(ev models.LedgerEvent) {
	log := logrus.WithField("user_id", ev.UserID)
	data, err := json.Marshal(&Message{ID: uuid.NewString(), LedgerEvent: ev})
	if err != nil {
		metrics.LedgerEventsPublished.WithLabelValues("error").Inc()
		log.Errorf("error marshaling %s event: %v", ev.Kind, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalPublishTimeout)
	defer cancel()
	id, err := j.svc.Publish(ctx, j.topicID, Envelope{
		Data:        data,
		EventType:   string(ev.Kind),
		OrderingKey: strconv.FormatInt(ev.UserID, 10),
	})
	if err != nil {
		metrics.LedgerEventsPublished.WithLabelValues("error").Inc()
		log.Errorf("error publishing %s event: %v", ev.Kind, err)
		return
	}
	metrics.LedgerEventsPublished.WithLabelValues("ok").Inc()
	log.Debugf("published %s event with message id %s", ev.Kind, id)
}
