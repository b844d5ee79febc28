package telegram

import (
	"github.com/matheuscscp/groupsplit/internal/bot"
	"github.com/matheuscscp/groupsplit/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const buttonsPerRow = 2

type (
	// sender is the subset of *tgbotapi.BotAPI used by the shell.
	sender interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	// origin is the Telegram context of the update an instruction answers.
	origin struct {
		chatID     int64
		replyTo    int
		messageID  int
		callbackID string
	}
)

func keyboard(buttons []bot.Button) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	flush := func() {
		if len(row) > 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	for _, b := range buttons {
		button := tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)
		if b.Wide {
			flush()
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
			continue
		}
		row = append(row, button)
		if len(row) == buttonsPerRow {
			flush()
		}
	}
	flush()
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// deliver renders instructions and answers the callback query of o, if any.
// Failures are logged and never reach the bot state.
func deliver(api sender, o origin, instrs []bot.Instruction) {
	log := logrus.WithField("user_id", o.chatID)
	answered := false
	for _, instr := range instrs {
		if instr.Kind == bot.Alert && o.callbackID != "" {
			answered = true
		}
		if err := render(api, o, instr); err != nil {
			metrics.RenderFailures.Inc()
			log.Errorf("error rendering %s: %v\n\ntext:\n%s", instr.Kind, err, instr.Text)
		}
	}
	if o.callbackID != "" && !answered {
		if _, err := api.Request(tgbotapi.NewCallback(o.callbackID, "")); err != nil {
			log.Errorf("error answering callback query: %v", err)
		}
	}
}

func render(api sender, o origin, instr bot.Instruction) error {
	switch instr.Kind {
	case bot.Alert:
		if o.callbackID != "" {
			_, err := api.Request(tgbotapi.NewCallbackWithAlert(o.callbackID, instr.Text))
			return err
		}
	case bot.EditMessage:
		if o.messageID != 0 {
			var edit tgbotapi.Chattable = tgbotapi.NewEditMessageText(o.chatID, o.messageID, instr.Text)
			if len(instr.Options) > 0 {
				edit = tgbotapi.NewEditMessageTextAndMarkup(o.chatID, o.messageID, instr.Text, keyboard(instr.Options))
			}
			_, err := api.Request(edit)
			if err == nil {
				return nil
			}
			logrus.WithField("user_id", o.chatID).Warnf("error editing message, sending a new one: %v", err)
		}
	}

	msg := tgbotapi.NewMessage(o.chatID, instr.Text)
	msg.ReplyToMessageID = o.replyTo
	if len(instr.Options) > 0 {
		msg.ReplyMarkup = keyboard(instr.Options)
	}
	_, err := api.Send(msg)
	return err
}
