package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const namespace = "groupsplit"

var (
	// EventsHandled counts inbound events and commands by kind.
	EventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Inbound events and commands handled, by kind.",
	}, []string{"kind"})

	// InstructionsEmitted ...
	InstructionsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instructions_emitted_total",
		Help:      "Outbound instructions produced, by kind.",
	}, []string{"kind"})

	// RenderFailures counts instructions a transport failed to deliver.
	RenderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_failures_total",
		Help:      "Outbound instructions that could not be delivered.",
	})

	// ActiveConversations ...
	ActiveConversations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_conversations",
		Help:      "Users in the middle of a multi-step flow.",
	})

	// ExpiredConversations ...
	ExpiredConversations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expired_conversations_total",
		Help:      "Conversations dropped after staying idle for longer than the configured TTL.",
	})

	// DroppedUpdates counts Telegram updates dropped because their chat had
	// too many updates waiting.
	DroppedUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_updates_total",
		Help:      "Telegram updates dropped because their chat queue was full.",
	})
	// LedgerEventsPublished counts ledger events by publish outcome.
	LedgerEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_events_published_total",
		Help:      "Ledger events sent to the event feed, by result.",
	}, []string{"result"})
)

// Serve exposes the default registry on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("error shutting down metrics server: %v", err)
		}
	}()

	logrus.Infof("Serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error serving metrics: %w", err)
	}
	return nil
}
