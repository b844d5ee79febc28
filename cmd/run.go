package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheuscscp/groupsplit/config"
	"github.com/matheuscscp/groupsplit/internal/bot"
	"github.com/matheuscscp/groupsplit/internal/metrics"
	"github.com/matheuscscp/groupsplit/internal/telegram"
	"github.com/matheuscscp/groupsplit/logging"
	"github.com/matheuscscp/groupsplit/services/archive"
	"github.com/matheuscscp/groupsplit/services/events"
	"github.com/matheuscscp/groupsplit/services/secrets"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot",
		Long:  "Run the Telegram bot with the config file named by CONF_FILE (default config.yml).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx)
		},
	}
}

func runBot(ctx context.Context) error {
	var conf config.Bot
	if err := config.Load(&conf, false); err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := logging.SetLevel(conf.LogLevel); err != nil {
		return err
	}

	token, err := secrets.ResolveToken(ctx, conf.Telegram.Token, conf.Telegram.TokenSecretID, secrets.NewService)
	if err != nil {
		return fmt.Errorf("error resolving Telegram token: %w", err)
	}

	eventsService, err := events.NewService(ctx, conf.ProjectID)
	if err != nil {
		return fmt.Errorf("error creating events service: %w", err)
	}
	defer eventsService.Close()

	var journal bot.Journal
	if conf.ProjectID != "" && conf.Events.TopicID != "" {
		j := events.NewJournal(eventsService, conf.Events.TopicID)
		defer j.Close()
		journal = j
	}

	archiveService, err := archive.NewService(ctx, conf.ArchiveBucket)
	if err != nil {
		return fmt.Errorf("error creating archive service: %w", err)
	}
	defer archiveService.Close()

	if conf.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, conf.MetricsAddr); err != nil {
				logrus.Error(err)
			}
		}()
	}

	b := bot.New(journal, conf.ConversationTTL)
	return telegram.Run(ctx, &conf, token, b, archiveService)
}
