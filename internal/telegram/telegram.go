// Package telegram adapts the Telegram Bot API to the dispatcher's transport.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fenggwsx/ReminderBot/internal/server"
)

// The long poll waits up to 60s, so requests need a larger deadline.
const requestTimeout = 75 * time.Second

// Dispatcher receives inbound commands.
type Dispatcher interface {
	Handle(ctx context.Context, req server.Request) error
}

// Client implements server.Transport on top of the Bot API.
type Client struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// New connects to the Bot API with token.
func New(token string, logger zerolog.Logger) (*Client, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, nil, logger)
}

// NewWithEndpoint connects to a Bot API compatible endpoint. endpoint is a
// format string receiving the token and the method name.
func NewWithEndpoint(token, endpoint string, httpClient tgbotapi.HTTPClient, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram: empty token")
	}
	logger = logger.With().Str("component", "telegram").Logger()
	if err := tgbotapi.SetLogger(botLogger{logger: logger}); err != nil {
		return nil, errors.Wrap(err, "telegram: set logger")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "telegram: connect")
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("authorized on telegram")
	return &Client{api: api, logger: logger}, nil
}

// UserName returns the bot account name.
func (c *Client) UserName() string {
	return c.api.Self.UserName
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) (server.MessageRef, error) {
	return c.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendMarkdown sends a MarkdownV2 message. text must already be escaped.
func (c *Client) SendMarkdown(ctx context.Context, chatID int64, text string) (server.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return c.send(ctx, msg)
}

func (c *Client) send(ctx context.Context, msg tgbotapi.MessageConfig) (server.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return server.MessageRef{}, err
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return server.MessageRef{}, errors.Wrap(err, "telegram: send message")
	}
	return server.MessageRef{ChatID: msg.ChatID, MessageID: sent.MessageID}, nil
}

// SendTyping shows the typing indicator in the chat.
func (c *Client) SendTyping(ctx context.Context, chatID int64) error {
	return c.request(ctx, "send chat action", tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, ref server.MessageRef) error {
	return c.request(ctx, "delete message", tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
}

// PinMessage pins a message in its chat.
func (c *Client) PinMessage(ctx context.Context, ref server.MessageRef) error {
	return c.request(ctx, "pin message", tgbotapi.PinChatMessageConfig{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	})
}

func (c *Client) request(ctx context.Context, op string, chattable tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(chattable); err != nil {
		return errors.Wrapf(err, "telegram: %s", op)
	}
	return nil
}

// Run long-polls for updates and hands every command to dispatcher until ctx
// is canceled. Commands are handled one at a time.
func (c *Client) Run(ctx context.Context, dispatcher Dispatcher) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			req, ok := RequestFromUpdate(update, c.api.Self.UserName)
			if !ok {
				continue
			}
			if err := dispatcher.Handle(ctx, req); err != nil {
				c.logger.Warn().Err(err).Str("command", req.Command).Int64("chat_id", req.Chat.ID).Msg("command reply failed")
			}
		}
	}
}

// RequestFromUpdate extracts a command from update. Commands addressed to
// another bot (/list@other_bot) are skipped.
func RequestFromUpdate(update tgbotapi.Update, botName string) (server.Request, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return server.Request{}, false
	}
	if parts := strings.SplitN(msg.CommandWithAt(), "@", 2); len(parts) == 2 && botName != "" && !strings.EqualFold(parts[1], botName) {
		return server.Request{}, false
	}
	return server.Request{
		Command: msg.Command(),
		Args:    msg.CommandArguments(),
		Chat:    server.Chat{ID: msg.Chat.ID, Title: chatTitle(msg.Chat)},
		Sender:  senderName(msg.From),
		Message: server.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID},
	}, true
}

func chatTitle(chat *tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if chat.UserName != "" {
		return chat.UserName
	}
	return strings.TrimSpace(chat.FirstName + " " + chat.LastName)
}

// senderName prefers the username and falls back to the full name.
func senderName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

type botLogger struct {
	logger zerolog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
