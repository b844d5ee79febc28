// Package console drives the bot from a line-oriented terminal session.
//
// Lines starting with "/" are commands, "!<data>" clicks the button whose
// callback data is <data>, and anything else is sent as text.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matheuscscp/groupsplit/internal/bot"
)

// UserID is the user every console session acts as.
const UserID bot.UserID = 1

// Run reads lines from in until EOF or ctx is done and writes the bot's
// instructions to out.
func Run(ctx context.Context, b *bot.Bot, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Text()

		var instrs []bot.Instruction
		switch {
		case strings.HasPrefix(line, "/"):
			name := strings.TrimPrefix(strings.Fields(line + " ")[0], "/")
			var ok bool
			if instrs, ok = b.Command(UserID, name); !ok {
				instrs = []bot.Instruction{{Kind: bot.NewMessage, Text: fmt.Sprintf("I don't know the command /%s.", name)}}
			}
		case strings.HasPrefix(line, "!"):
			instrs = b.HandleEvent(bot.Event{UserID: UserID, Kind: bot.EventButtonClick, Payload: strings.TrimPrefix(line, "!")})
		default:
			instrs = b.HandleEvent(bot.Event{UserID: UserID, Kind: bot.EventText, Payload: line})
		}

		for _, instr := range instrs {
			if err := write(out, instr); err != nil {
				return fmt.Errorf("error writing output: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func write(out io.Writer, instr bot.Instruction) error {
	var sb strings.Builder
	switch instr.Kind {
	case bot.EditMessage:
		sb.WriteString("(edited) ")
	case bot.Alert:
		sb.WriteString("(alert) ")
	}
	sb.WriteString(instr.Text)
	sb.WriteString("\n")
	for _, b := range instr.Options {
		fmt.Fprintf(&sb, "  [%s] !%s\n", b.Label, b.Data)
	}
	_, err := io.WriteString(out, sb.String())
	return err
}
