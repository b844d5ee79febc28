package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheuscscp/groupsplit/config"
	"github.com/matheuscscp/groupsplit/internal/bot"
	"github.com/matheuscscp/groupsplit/services/archive"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const exportTimeout = 30 * time.Second

type (
	// Shell connects a bot to the Telegram Bot API.
	Shell struct {
		api       sender
		bot       *bot.Bot
		archive   archive.Service
		startTime time.Time
	}
)

// NewShell ...
func NewShell(api sender, b *bot.Bot, arch archive.Service) *Shell {
	return &Shell{
		api:       api,
		bot:       b,
		archive:   arch,
		startTime: time.Now(),
	}
}

// Run authenticates on Telegram and handles updates until ctx is done.
func Run(ctx context.Context, conf *config.Bot, token string, b *bot.Bot, arch archive.Service) error {
	telegramClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("error creating Telegram Bot API client: %w", err)
	}
	logrus.Infof("Authenticated on Telegram bot account %s", telegramClient.Self.UserName)

	shell := NewShell(telegramClient, b, arch)
	if err := shell.RegisterCommands(); err != nil {
		logrus.Warnf("error registering bot commands: %v", err)
	}

	updateConf := tgbotapi.NewUpdate(0 /*offset*/)
	updateConf.Timeout = int(conf.Telegram.LongPollingTimeout.Seconds())
	updateChannel := telegramClient.GetUpdatesChan(updateConf)

	// shutdown thread
	go func() {
		<-ctx.Done()
		logrus.Info("My context was cancelled, I'm shutting down.")
		telegramClient.StopReceivingUpdates()
	}()

	shell.Serve(ctx, updateChannel)
	return nil
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (s *Shell) RegisterCommands() error {
	var commands []tgbotapi.BotCommand
	for _, c := range bot.Commands() {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	commands = append(commands,
		tgbotapi.BotCommand{Command: "export", Description: "Export the group to the archive"},
		tgbotapi.BotCommand{Command: "uptime", Description: "Show how long the bot has been up"},
	)
	_, err := s.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

// Serve handles updates until the channel is closed, then waits for the
// updates already queued.
func (s *Shell) Serve(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	d := newDispatcher(func(update tgbotapi.Update) {
		s.HandleUpdate(ctx, &update)
	})
	defer d.close()

	for update := range updates {
		chatID, ok := chatOf(&update)
		if !ok {
			logrus.WithField("update_id", update.UpdateID).Debug("skipping update without a chat")
			continue
		}
		d.dispatch(chatID, update)
	}
}

// HandleUpdate turns one Telegram update into bot events and renders the
// resulting instructions.
func (s *Shell) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	chatID, ok := chatOf(update)
	if !ok {
		return
	}
	userID := bot.UserID(chatID)

	if cq := update.CallbackQuery; cq != nil {
		logrus.WithField("user_id", chatID).Debugf("button %s", cq.Data)
		instrs := s.bot.HandleEvent(bot.Event{UserID: userID, Kind: bot.EventButtonClick, Payload: cq.Data})
		deliver(s.api, origin{chatID: chatID, messageID: cq.Message.MessageID, callbackID: cq.ID}, instrs)
		return
	}

	msg := update.Message
	var from string
	if msg.From != nil {
		from = msg.From.UserName
	}
	logrus.WithField("user_id", chatID).Infof("[%s] %s", from, msg.Text)

	var instrs []bot.Instruction
	if msg.IsCommand() {
		instrs = s.command(ctx, userID, msg.Command())
	} else {
		instrs = s.bot.HandleEvent(bot.Event{UserID: userID, Kind: bot.EventText, Payload: msg.Text})
	}
	deliver(s.api, origin{chatID: chatID, replyTo: msg.MessageID}, instrs)
}

func (s *Shell) command(ctx context.Context, userID bot.UserID, name string) []bot.Instruction {
	switch name {
	case "uptime":
		return reply(userID, "I'm up for %s.", time.Since(s.startTime).Round(time.Second))
	case "export":
		return s.export(ctx, userID)
	}
	if instrs, ok := s.bot.Command(userID, name); ok {
		return instrs
	}
	return reply(userID, "I don't know the command /%s.", name)
}

func (s *Shell) export(ctx context.Context, userID bot.UserID) []bot.Instruction {
	group, err := s.bot.Group(userID)
	if err != nil {
		return reply(userID, "No group setup found. Use /start to set up.")
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	object, err := s.archive.Export(ctx, int64(userID), group)
	switch {
	case errors.Is(err, archive.ErrServiceNotConfigured):
		return reply(userID, "Exports are not enabled.")
	case err != nil:
		logrus.WithField("user_id", userID).Errorf("error exporting group: %v", err)
		return reply(userID, "I had an unexpected error exporting the group: %v", err)
	}
	return reply(userID, "📦 Group exported to %s.", object)
}

func reply(userID bot.UserID, format string, args ...interface{}) []bot.Instruction {
	return []bot.Instruction{{
		UserID: userID,
		Kind:   bot.NewMessage,
		Text:   fmt.Sprintf(format, args...),
	}}
}
