package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
)

// EventTypeAttribute is the message attribute carrying the ledger event kind,
// so subscribers can filter without decoding the payload.
const EventTypeAttribute = "eventType"

type (
	// Service publishes envelopes to Pub/Sub topics.
	Service interface {
		Publish(ctx context.Context, topicID string, env Envelope) (id string, err error)
		Close()
	}

	// Envelope is an encoded event plus its routing metadata. Envelopes with
	// the same OrderingKey are delivered in publish order.
	Envelope struct {
		Data        []byte
		EventType   string
		OrderingKey string
	}

	service struct {
		client *pubsub.Client

		topicsMu sync.Mutex
		topics   map[string]*pubsub.Topic
	}
)

var (
	// ErrServiceNotConfigured ...
	ErrServiceNotConfigured = errors.New("the pubsub client was not configured with a projectID")
)

// NewService returns a service that fails every Publish with
// ErrServiceNotConfigured when projectID is empty.
func NewService(ctx context.Context, projectID string) (Service, error) {
	if projectID == "" {
		return &service{}, nil
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error creating pubsub client: %w", err)
	}
	return &service{client: client, topics: make(map[string]*pubsub.Topic)}, nil
}

// Close flushes pending messages of every topic used so far.
func (s *service) Close() {
	if s.client == nil {
		return
	}
	s.topicsMu.Lock()
	for _, t := range s.topics {
		t.Stop()
	}
	s.topics = nil
	s.topicsMu.Unlock()
	s.client.Close()
}

func (s *service) topic(topicID string) *pubsub.Topic {
	s.topicsMu.Lock()
	defer s.topicsMu.Unlock()
	t, ok := s.topics[topicID]
	if !ok {
		t = s.client.Topic(topicID)
		t.EnableMessageOrdering = true
		s.topics[topicID] = t
	}
	return t
}

func (s *service) Publish(ctx context.Context, topicID string, env Envelope) (string, error) {
	if s.client == nil {
		return "", ErrServiceNotConfigured
	}
	t := s.topic(topicID)
	msg := &pubsub.Message{
		Data:        env.Data,
		OrderingKey: env.OrderingKey,
	}
	if env.EventType != "" {
		msg.Attributes = map[string]string{EventTypeAttribute: env.EventType}
	}
	id, err := t.Publish(ctx, msg).Get(ctx)
	if err != nil {
		// a failed publish pauses its ordering key until resumed
		if env.OrderingKey != "" {
			t.ResumePublish(env.OrderingKey)
		}
		return "", fmt.Errorf("error publishing pubsub message: %w", err)
	}
	return id, nil
}
