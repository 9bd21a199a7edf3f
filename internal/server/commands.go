package server

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fenggwsx/ReminderBot/internal/auth"
	"github.com/fenggwsx/ReminderBot/internal/command"
	"github.com/fenggwsx/ReminderBot/internal/storage"
)

const (
	replyRegisterUsage = "Could not process the event. Should have the format: '/register <date (dd-mm-yyyy HH:MM)>|<title>|<message>'"
	replyListUsage     = "Could not read the filters. Should have the format: '/list [amount|all] [next|past]'"
	replyEventUsage    = "Could not read the event id. Should have the format: '/event <id>'"
	replyEventNotFound = "This event wasn't found. Try /list"
	replyNothingToPin  = "There are no upcoming events to pin. Try /register"

	shortListAmount = 5
)

func (a *App) handleRegisterChat(ctx context.Context, req *Request) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("chat_name", req.Chat.Title).Msg("chat registration requested")

	text := fmt.Sprintf("'%s' may be registered Soon™", req.Chat.Title)
	code, err := auth.NewRegistrationCode(a.opts.Registration, req.Chat.ID, req.Chat.Title)
	switch {
	case err == nil:
		text += "\nSend this code to the owner:\n" + code
	case !errors.Is(err, auth.ErrRegistrationDisabled):
		logger.Error().Err(err).Msg("registration code not issued")
	}
	return a.reply(ctx, req, text)
}

func (a *App) handleRegister(ctx context.Context, req *Request) error {
	logger := zerolog.Ctx(ctx)

	payload, err := command.ParseRegisterPayload(req.Args)
	if err != nil {
		logger.Warn().Err(err).Str("text", req.Args).Msg("register payload rejected")
		return a.reply(ctx, req, replyRegisterUsage)
	}

	event := storage.Event{
		ChatID: req.chatID,
		Title:  payload.Title,
		Date:   payload.Date,
		Text:   payload.Message,
	}
	failed := func(err error, msg string) error {
		logger.Error().Err(err).
			Int64("internal_chat_id", req.chatID).
			Time("date", payload.Date).
			Str("title", payload.Title).
			Str("message", payload.Message).
			Msg(msg)
		return a.reply(ctx, req, replyTryLater)
	}

	if err := a.store.InsertEvent(ctx, event); err != nil {
		if !errors.Is(err, storage.ErrDuplicateEvent) {
			return failed(err, "insert event failed")
		}
		logger.Debug().Str("title", payload.Title).Msg("event exists, updating text")
	}
	// The update reconciles the text when the insert hit an existing event.
	if _, err := a.store.UpdateEvent(ctx, event); err != nil {
		return failed(err, "update event failed")
	}

	return a.reply(ctx, req, fmt.Sprintf("Registered:\nTitle: %s\nDate:%s\nMessage:\n%s",
		payload.Title, payload.Date.Format(DisplayLayout), payload.Message))
}

func (a *App) handleList(ctx context.Context, req *Request) error {
	amount, filter, err := command.ParseListPayload(req.Args)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("text", req.Args).Msg("list payload rejected")
		return a.reply(ctx, req, replyListUsage)
	}
	return a.replyEventList(ctx, req, amount, filter)
}

func (a *App) handleNext(ctx context.Context, req *Request) error {
	return a.replyEventList(ctx, req, shortListAmount, storage.DateFilterFuture)
}

func (a *App) handleLast(ctx context.Context, req *Request) error {
	return a.replyEventList(ctx, req, shortListAmount, storage.DateFilterPast)
}

func (a *App) replyEventList(ctx context.Context, req *Request, amount int, filter storage.DateFilter) error {
	events, err := a.store.ListEvents(ctx, req.chatID, amount, filter)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Int64("internal_chat_id", req.chatID).
			Int("amount", amount).
			Str("filter", string(filter)).
			Msg("list events failed")
		return a.reply(ctx, req, replyTryLater)
	}
	_, err = a.replyMarkdown(ctx, req,
		renderEventList(amount, filter, events), renderEventListPlain(amount, filter, events))
	return err
}

func (a *App) handleShowEvent(ctx context.Context, req *Request) error {
	logger := zerolog.Ctx(ctx)

	eventID, err := command.ParseEventID(req.Args)
	if err != nil {
		logger.Warn().Err(err).Str("text", req.Args).Msg("event id rejected")
		return a.reply(ctx, req, replyEventUsage)
	}
	event, ok, err := a.store.GetEvent(ctx, req.chatID, &eventID)
	if err != nil {
		logger.Error().Err(err).Int64("internal_chat_id", req.chatID).Int64("event_id", eventID).Msg("get event failed")
		return a.reply(ctx, req, replyTryLater)
	}
	if !ok {
		return a.reply(ctx, req, replyEventNotFound)
	}
	_, err = a.replyMarkdown(ctx, req, renderEvent(event), renderEventPlain(event))
	return err
}

func (a *App) handlePin(ctx context.Context, req *Request) error {
	logger := zerolog.Ctx(ctx)

	event, ok, err := a.store.GetEvent(ctx, req.chatID, nil)
	if err != nil {
		logger.Error().Err(err).Int64("internal_chat_id", req.chatID).Msg("get next event failed")
		return a.reply(ctx, req, replyTryLater)
	}
	if !ok {
		return a.reply(ctx, req, replyNothingToPin)
	}
	ref, err := a.replyMarkdown(ctx, req, renderEvent(event), renderEventPlain(event))
	if err != nil {
		return err
	}
	if err := a.transport.PinMessage(ctx, ref); err != nil {
		logger.Debug().Err(err).Int("message_id", ref.MessageID).Msg("event message not pinned")
	}
	return nil
}
