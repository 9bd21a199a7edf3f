package server

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	replyNotAllowed = "This chat hasn't been allowed. Try /register_chat and send a message to the owner."
	replyTryLater   = "Something went wrong while reaching the reminders. Try again later."
)

// sendTyping shows the typing indicator before the handler runs.
func (a *App) sendTyping(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		if err := a.transport.SendTyping(ctx, req.Chat.ID); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("typing indicator not sent")
		}
		return next(ctx, req)
	}
}

// removeSource deletes the command message once the handler is done. Failures
// (already deleted, missing permission) are dropped. Disabled in debug mode.
func (a *App) removeSource(next HandlerFunc) HandlerFunc {
	if a.opts.Debug {
		return next
	}
	return func(ctx context.Context, req *Request) error {
		err := next(ctx, req)
		if delErr := a.transport.DeleteMessage(ctx, req.Message); delErr != nil {
			zerolog.Ctx(ctx).Debug().Err(delErr).Int("message_id", req.Message.MessageID).Msg("command message not removed")
		}
		return err
	}
}

// requireChat stops requests from chats that are not registered.
func (a *App) requireChat(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, req *Request) error {
		chatID, ok, err := a.store.ResolveChat(ctx, req.Chat.ID, req.Chat.Title)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("chat_name", req.Chat.Title).Msg("chat lookup failed")
			return a.reply(ctx, req, replyTryLater)
		}
		if !ok {
			zerolog.Ctx(ctx).Info().Str("chat_name", req.Chat.Title).Msg("chat not allowed")
			return a.reply(ctx, req, replyNotAllowed)
		}
		req.chatID = chatID
		return next(ctx, req)
	}
}
