package cmd

import (
	"fmt"

	"github.com/matheuscscp/groupsplit/config"
	"github.com/matheuscscp/groupsplit/internal/bot"
	"github.com/matheuscscp/groupsplit/internal/console"
	"github.com/matheuscscp/groupsplit/logging"

	"github.com/spf13/cobra"
)

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot from the terminal",
		Long: `Talk to the bot from the terminal. Type commands like /start or /add,
click buttons by typing ! followed by the button data (e.g. !payer:0),
and send anything else as a text message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var conf config.Bot
			if err := config.Load(&conf, true); err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if err := logging.SetLevel(conf.LogLevel); err != nil {
				return err
			}
			b := bot.New(nil, conf.ConversationTTL)
			return console.Run(cmd.Context(), b, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
