// Package notify pushes short admin notices (new orders, subscriptions,
// catering requests) to a Telegram chat.
package notify

import (
	"context"
	"sync"

	applog "food-storefront/log"
	"food-storefront/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const defaultQueueSize = 64

// Notifier delivers admin notices. Notify must not block the caller.
type Notifier interface {
	Notify(ctx context.Context, text string)
	Close()
}

// Nop discards every notice. Used when no Telegram token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) {}
func (Nop) Close()                         {}

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends notices to one admin chat from a single background goroutine.
type Telegram struct {
	sender Sender
	chatID int64
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan string
	done   chan struct{}
}

// NewTelegram logs in with the bot token and starts the sender goroutine.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	t := NewTelegramWithSender(bot, chatID, defaultQueueSize)
	t.log.Info().Str("bot", bot.Self.UserName).Int64("chat_id", chatID).Msg("telegram notifier ready")
	return t, nil
}

func NewTelegramWithSender(sender Sender, chatID int64, queueSize int) *Telegram {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	t := &Telegram{
		sender: sender,
		chatID: chatID,
		log:    applog.WithComponent("notify"),
		queue:  make(chan string, queueSize),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Notify enqueues text. When the queue is full or the notifier is closed the
// notice is dropped.
func (t *Telegram) Notify(_ context.Context, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		metrics.RecordNotification("dropped")
		return
	}
	select {
	case t.queue <- text:
	default:
		metrics.RecordNotification("dropped")
		t.log.Warn().Msg("notification queue full, dropping message")
	}
}

// Close stops accepting notices, flushes the queue and waits for the sender.
func (t *Telegram) Close() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	<-t.done
}

func (t *Telegram) run() {
	defer close(t.done)
	for text := range t.queue {
		msg := tgbotapi.NewMessage(t.chatID, text)
		if _, err := t.sender.Send(msg); err != nil {
			metrics.RecordNotification("failed")
			t.log.Error().Err(err).Msg("send admin notification")
			continue
		}
		metrics.RecordNotification("sent")
	}
}
