package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

// chatRecipient accepts both numeric chat ids and @channel names.
type chatRecipient string

func (c chatRecipient) Recipient() string { return string(c) }

// CommandHandler turns the payload of a chat command into a reply. An empty reply sends nothing.
type CommandHandler func(payload string) string

// TelegramNotifier sends messages and serves commands via the Telegram Bot API.
type TelegramNotifier struct {
	bot  *tb.Bot
	chat chatRecipient
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return newNotifier(tb.Settings{
		Token:  botToken,
		Poller: &tb.LongPoller{Timeout: 30 * time.Second},
		Client: &http.Client{Timeout: 45 * time.Second, Transport: transport},
	}, chatID)
}

func newNotifier(settings tb.Settings, chatID string) (*TelegramNotifier, error) {
	bot, err := tb.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chat: chatRecipient(chatID)}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	if _, err := t.bot.Send(t.chat, text, tb.ModeHTML); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return t.sendWithRetry(ctx, text, maxRetries, time.Second)
}

func (t *TelegramNotifier) sendWithRetry(ctx context.Context, text string, maxRetries int, base time.Duration) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * base
			log.WithFields(log.Fields{"attempt": i + 1, "of": maxRetries + 1, "backoff": backoff}).
				WithError(err).Warn("telegram send failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Handle registers h for a command such as "/signal". Replies go to the chat the command came from.
func (t *TelegramNotifier) Handle(command string, h CommandHandler) {
	t.bot.Handle(command, func(m *tb.Message) {
		payload := strings.TrimSpace(m.Payload)
		log.WithFields(log.Fields{"command": command, "payload": payload}).Info("received command")
		reply := h(payload)
		if reply == "" {
			return
		}
		if _, err := t.bot.Send(m.Chat, reply, tb.ModeHTML); err != nil {
			log.WithError(err).WithField("command", command).Error("send reply")
		}
	})
}

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context) {
	go t.bot.Start()
	<-ctx.Done()
	t.bot.Stop()
	log.Info("telegram polling stopped")
}
