package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

// Client adapts the Bot API to the send primitive and the webhook provider.
type Client struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewClient wraps an authorized bot.
func NewClient(bot *tgbotapi.BotAPI, log *zap.Logger) *Client {
	return &Client{bot: bot, log: log}
}

// Bot exposes the underlying API for polling.
func (c *Client) Bot() *tgbotapi.BotAPI { return c.bot }

// newMessage targets numeric chat IDs or @channel usernames.
func newMessage(chatID, text string) (tgbotapi.MessageConfig, error) {
	chatID = strings.TrimSpace(chatID)
	if strings.HasPrefix(chatID, "@") {
		return tgbotapi.NewMessageToChannel(chatID, text), nil
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return tgbotapi.NewMessage(id, text), nil
}

// SendMessage sends a plain text message to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := newMessage(chatID, text)
	if err != nil {
		return err
	}
	_, err = c.bot.Send(msg)
	return err
}

// SendMenu sends text with the main reply keyboard.
func (c *Client) SendMenu(ctx context.Context, chatID string, text string, subscribed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := newMessage(chatID, text)
	if err != nil {
		return err
	}
	msg.ReplyMarkup = mainMenuKeyboard(subscribed)
	_, err = c.bot.Send(msg)
	return err
}

// SetWebhook registers the webhook. The request is built by hand because
// WebhookConfig has no secret_token field.
func (c *Client) SetWebhook(ctx context.Context, d webhook.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := tgbotapi.Params{"url": d.URL}
	params.AddNonEmpty("secret_token", d.SecretToken)
	params.AddNonZero("max_connections", d.MaxConnections)
	params.AddBool("drop_pending_updates", d.DropPendingUpdates)
	if err := params.AddInterface("allowed_updates", d.AllowedUpdates); err != nil {
		return err
	}
	_, err := c.bot.MakeRequest("setWebhook", params)
	return err
}

// DeleteWebhook removes the webhook, optionally dropping queued updates.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending})
	return err
}

// GetWebhookInfo reads the provider's current webhook.
func (c *Client) GetWebhookInfo(ctx context.Context) (webhook.Info, error) {
	if err := ctx.Err(); err != nil {
		return webhook.Info{}, err
	}
	wi, err := c.bot.GetWebhookInfo()
	if err != nil {
		return webhook.Info{}, err
	}
	info := webhook.Info{
		URL:                wi.URL,
		PendingUpdateCount: wi.PendingUpdateCount,
		MaxConnections:     wi.MaxConnections,
		AllowedUpdates:     wi.AllowedUpdates,
		LastErrorMessage:   wi.LastErrorMessage,
	}
	if wi.LastErrorDate > 0 {
		info.LastErrorDate = time.Unix(int64(wi.LastErrorDate), 0).UTC()
	}
	return info, nil
}
