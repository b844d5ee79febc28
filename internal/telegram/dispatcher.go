package telegram

import (
	"sync"

	"github.com/matheuscscp/groupsplit/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const maxPendingUpdates = 256

// dispatcher hands updates to one worker goroutine per chat, so updates of a
// chat are handled in arrival order while different chats proceed in
// parallel. dispatch never blocks: a chat with too many pending updates drops
// the new ones. A worker exits once its chat has nothing pending.
type dispatcher struct {
	handle func(update tgbotapi.Update)

	mu      sync.Mutex
	pending map[int64][]tgbotapi.Update
	wg      sync.WaitGroup
}

func newDispatcher(handle func(update tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		handle:  handle,
		pending: make(map[int64][]tgbotapi.Update),
	}
}

func (d *dispatcher) dispatch(chatID int64, update tgbotapi.Update) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue, busy := d.pending[chatID]
	if !busy {
		// the entry marks the chat as having a worker
		d.pending[chatID] = nil
		d.wg.Add(1)
		go d.work(chatID, update)
		return
	}
	if len(queue) >= maxPendingUpdates {
		metrics.DroppedUpdates.Inc()
		logrus.WithField("user_id", chatID).Warnf("too many pending updates, dropping update %d", update.UpdateID)
		return
	}
	d.pending[chatID] = append(queue, update)
}

func (d *dispatcher) work(chatID int64, update tgbotapi.Update) {
	defer d.wg.Done()
	for {
		d.handle(update)

		d.mu.Lock()
		queue := d.pending[chatID]
		if len(queue) == 0 {
			delete(d.pending, chatID)
			d.mu.Unlock()
			return
		}
		update = queue[0]
		queue[0] = tgbotapi.Update{}
		d.pending[chatID] = queue[1:]
		d.mu.Unlock()
	}
}

// workers returns the number of chats with a running worker.
func (d *dispatcher) workers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// close waits for every pending update to be handled. dispatch must not be
// called afterwards.
func (d *dispatcher) close() {
	d.wg.Wait()
}

func chatOf(update *tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}
