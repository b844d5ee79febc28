package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matheuscscp/groupsplit/internal/bot"
	"github.com/matheuscscp/groupsplit/models"
	"github.com/matheuscscp/groupsplit/services/archive"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 1001

type fakeSender struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	editErr   error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return nil, f.editErr
	}
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	return msg
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.requested = nil
}

type fakeArchive struct {
	exported *models.Group
	err      error
}

func (f *fakeArchive) Export(ctx context.Context, userID int64, group *models.Group) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.exported = group
	return "groups/1001/20240101T000000Z.yml", nil
}

func (f *fakeArchive) Close() {}

func textUpdate(messageID int, text string) *tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{UserName: "alice"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return &tgbotapi.Update{Message: msg}
}

func clickUpdate(messageID int, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-" + data,
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: messageID,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
	}}
}

func newTestShell(arch archive.Service) (*Shell, *fakeSender) {
	api := &fakeSender{}
	if arch == nil {
		arch = &fakeArchive{}
	}
	return NewShell(api, bot.New(nil, 0), arch), api
}

func setup(t *testing.T, s *Shell, names ...string) {
	t.Helper()
	ctx := context.Background()
	s.HandleUpdate(ctx, textUpdate(1, "/start"))
	s.HandleUpdate(ctx, textUpdate(2, string(rune('0'+len(names)))))
	for i, name := range names {
		s.HandleUpdate(ctx, textUpdate(3+i, name))
	}
	s.HandleUpdate(ctx, textUpdate(10, "sgd"))
}

func TestKeyboardLayout(t *testing.T) {
	kb := keyboard([]bot.Button{
		{Label: "A", Data: "payer:0"},
		{Label: "✅ B", Data: "payer:1"},
		{Label: "C", Data: "payer:2"},
		{Label: "✅ Done", Data: "done_payers", Wide: true},
	})
	require.Len(t, kb.InlineKeyboard, 3)
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.Len(t, kb.InlineKeyboard[1], 1)
	require.Len(t, kb.InlineKeyboard[2], 1)
	assert.Equal(t, "✅ B", kb.InlineKeyboard[0][1].Text)
	assert.Equal(t, "payer:2", *kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "done_payers", *kb.InlineKeyboard[2][0].CallbackData)
}

func TestTextRepliesQuoteTheMessage(t *testing.T) {
	s, api := newTestShell(nil)
	s.HandleUpdate(context.Background(), textUpdate(7, "/start"))

	msg := api.lastMessage(t)
	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, 7, msg.ReplyToMessageID)
	assert.Equal(t, "How many people are there (including you)?", msg.Text)
}

func TestSelectionFlowOverTelegram(t *testing.T) {
	s, api := newTestShell(nil)
	setup(t, s, "A", "B")
	ctx := context.Background()

	api.reset()
	s.HandleUpdate(ctx, textUpdate(20, "/add"))
	msg := api.lastMessage(t)
	assert.Equal(t, "Who is paying? (Click names to select, then press ✅ Done)", msg.Text)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, kb.InlineKeyboard, 2)

	api.reset()
	s.HandleUpdate(ctx, clickUpdate(21, "payer:0"))
	require.Len(t, api.requested, 2)
	edit, ok := api.requested[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 21, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, "✅ A", edit.ReplyMarkup.InlineKeyboard[0][0].Text)
	answer, ok := api.requested[1].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-payer:0", answer.CallbackQueryID)
	assert.False(t, answer.ShowAlert)

	s.HandleUpdate(ctx, clickUpdate(21, "done_payers"))
	s.HandleUpdate(ctx, clickUpdate(21, "payee:1"))

	api.reset()
	s.HandleUpdate(ctx, clickUpdate(21, "done_payees"))
	require.Len(t, api.requested, 2)
	edit, ok = api.requested[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, "Enter the name/description of the expense:", edit.Text)
	assert.Nil(t, edit.ReplyMarkup)

	s.HandleUpdate(ctx, textUpdate(22, "taxi"))
	s.HandleUpdate(ctx, textUpdate(23, "12"))
	assert.Equal(t, "✅ Expense added: taxi - 12.00 SGD", api.lastMessage(t).Text)
}

func TestEmptySelectionAlerts(t *testing.T) {
	s, api := newTestShell(nil)
	setup(t, s, "A", "B")
	s.HandleUpdate(context.Background(), textUpdate(20, "/add"))

	api.reset()
	s.HandleUpdate(context.Background(), clickUpdate(21, "done_payers"))
	require.Len(t, api.requested, 1)
	answer, ok := api.requested[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, "Please select at least one payer.", answer.Text)
}

func TestEditFailureFallsBackToNewMessage(t *testing.T) {
	s, api := newTestShell(nil)
	setup(t, s, "A", "B")
	s.HandleUpdate(context.Background(), textUpdate(20, "/add"))

	api.editErr = errors.New("message is too old")
	api.reset()
	s.HandleUpdate(context.Background(), clickUpdate(21, "payer:1"))

	msg := api.lastMessage(t)
	assert.Equal(t, "Who is paying? (Click names to select, then press ✅ Done)", msg.Text)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "✅ B", kb.InlineKeyboard[0][1].Text)
}

func TestShellCommands(t *testing.T) {
	arch := &fakeArchive{}
	s, api := newTestShell(arch)
	ctx := context.Background()

	s.HandleUpdate(ctx, textUpdate(1, "/export"))
	assert.Equal(t, "No group setup found. Use /start to set up.", api.lastMessage(t).Text)

	s.HandleUpdate(ctx, textUpdate(2, "/uptime"))
	assert.Contains(t, api.lastMessage(t).Text, "I'm up for")

	s.HandleUpdate(ctx, textUpdate(3, "/dance"))
	assert.Equal(t, "I don't know the command /dance.", api.lastMessage(t).Text)

	setup(t, s, "A", "B")
	s.HandleUpdate(ctx, textUpdate(30, "/export"))
	assert.Equal(t, "📦 Group exported to groups/1001/20240101T000000Z.yml.", api.lastMessage(t).Text)
	require.NotNil(t, arch.exported)
	assert.Equal(t, []string{"A", "B"}, arch.exported.Participants)

	arch.err = archive.ErrServiceNotConfigured
	s.HandleUpdate(ctx, textUpdate(31, "/export"))
	assert.Equal(t, "Exports are not enabled.", api.lastMessage(t).Text)

	s.HandleUpdate(ctx, textUpdate(32, "/settleup"))
	assert.Equal(t, "No expenses to settle.", api.lastMessage(t).Text)
}

func TestRegisterCommands(t *testing.T) {
	s, api := newTestShell(nil)
	require.NoError(t, s.RegisterCommands())

	require.Len(t, api.requested, 1)
	cfg, ok := api.requested[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	var names []string
	for _, c := range cfg.Commands {
		names = append(names, c.Command)
	}
	assert.Equal(t, []string{"start", "add", "view", "settleup", "deleteexpense", "clear_expenses", "deletegroup", "abort", "export", "uptime"}, names)
}

func TestServeKeepsPerChatOrder(t *testing.T) {
	s, api := newTestShell(nil)
	updates := make(chan tgbotapi.Update, 16)
	for _, u := range []*tgbotapi.Update{
		textUpdate(1, "/start"),
		textUpdate(2, "2"),
		textUpdate(3, "A"),
		textUpdate(4, "B"),
		textUpdate(5, "eur"),
		{UpdateID: 99},
		textUpdate(6, "/view"),
	} {
		updates <- *u
	}
	close(updates)

	s.Serve(context.Background(), updates)

	require.Len(t, api.sent, 6)
	assert.Contains(t, api.sent[4].(tgbotapi.MessageConfig).Text, "💰 Currency: EUR")
	assert.Equal(t, "No expenses recorded yet.", api.sent[5].(tgbotapi.MessageConfig).Text)
}

func chatUpdate(chat int64, updateID int) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chat}},
	}
}

type handledUpdate struct {
	chat     int64
	updateID int
}

// blockingDispatcher returns a dispatcher whose handler holds chat 1 until
// release is closed.
func blockingDispatcher(buffer int) (d *dispatcher, handled chan handledUpdate, release chan struct{}) {
	handled = make(chan handledUpdate, buffer)
	release = make(chan struct{})
	d = newDispatcher(func(u tgbotapi.Update) {
		chat, _ := chatOf(&u)
		if chat == 1 {
			<-release
		}
		handled <- handledUpdate{chat, u.UpdateID}
	})
	return
}

func TestSlowChatDoesNotStallOtherChats(t *testing.T) {
	d, handled, release := blockingDispatcher(128)

	for i := 0; i < 66; i++ {
		d.dispatch(1, chatUpdate(1, i))
	}
	d.dispatch(2, chatUpdate(2, 100))

	select {
	case h := <-handled:
		assert.Equal(t, handledUpdate{2, 100}, h)
	case <-time.After(2 * time.Second):
		t.Fatal("chat 2 was not handled while chat 1 was busy")
	}

	close(release)
	d.close()
	close(handled)

	var order []int
	for h := range handled {
		assert.Equal(t, int64(1), h.chat)
		order = append(order, h.updateID)
	}
	require.Len(t, order, 66)
	for i, id := range order {
		assert.Equal(t, i, id)
	}
	assert.Zero(t, d.workers())
}

func TestDispatcherDropsUpdatesOfFloodingChat(t *testing.T) {
	d, handled, release := blockingDispatcher(maxPendingUpdates + 16)

	// the first update is taken by the worker, the next ones wait
	for i := 0; i < maxPendingUpdates+6; i++ {
		d.dispatch(1, chatUpdate(1, i))
	}
	close(release)
	d.close()
	close(handled)

	var count int
	for range handled {
		count++
	}
	assert.Equal(t, maxPendingUpdates+1, count)
}

func TestDispatcherRetiresIdleWorkers(t *testing.T) {
	var mu sync.Mutex
	var handled []int64
	d := newDispatcher(func(u tgbotapi.Update) {
		chat, _ := chatOf(&u)
		mu.Lock()
		handled = append(handled, chat)
		mu.Unlock()
	})

	for chat := int64(1); chat <= 50; chat++ {
		d.dispatch(chat, chatUpdate(chat, int(chat)))
	}
	d.close()
	assert.Zero(t, d.workers())
	assert.Len(t, handled, 50)

	d.dispatch(7, chatUpdate(7, 200))
	d.close()
	assert.Zero(t, d.workers())
	assert.Len(t, handled, 51)
}
