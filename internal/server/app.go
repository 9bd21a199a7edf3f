package server

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fenggwsx/ReminderBot/internal/config"
	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// HandlerFunc runs a command. Handlers reply through the transport themselves;
// the returned error only reports a failed delivery.
type HandlerFunc func(ctx context.Context, req *Request) error

// Middleware wraps a handler with cross-cutting behaviour.
type Middleware func(HandlerFunc) HandlerFunc

// debugSuffix is appended to every command name in debug mode so a test bot
// can share chats with the production one.
const debugSuffix = "_test"

// Options tune the dispatcher.
type Options struct {
	Debug        bool
	Registration config.RegistrationConfig
}

// App routes commands to handlers and owns their middleware pipelines.
type App struct {
	opts      Options
	store     storage.Store
	transport Transport
	logger    zerolog.Logger
	routes    map[string]HandlerFunc
}

// NewApp constructs a dispatcher using the provided dependencies.
func NewApp(opts Options, store storage.Store, transport Transport, logger zerolog.Logger) *App {
	a := &App{
		opts:      opts,
		store:     store,
		transport: transport,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		routes:    make(map[string]HandlerFunc),
	}

	a.route("register_chat", a.handleRegisterChat, a.sendTyping)
	a.route("register", a.handleRegister, a.sendTyping, a.requireChat)
	a.route("list", a.handleList, a.sendTyping, a.requireChat)
	a.route("next", a.handleNext, a.sendTyping, a.requireChat)
	a.route("last", a.handleLast, a.sendTyping, a.requireChat)
	a.route("event", a.handleShowEvent, a.sendTyping, a.removeSource, a.requireChat)
	a.route("pin", a.handlePin, a.sendTyping, a.removeSource, a.requireChat)
	return a
}

// route registers handler under name. The first middleware is the outermost.
func (a *App) route(name string, handler HandlerFunc, middlewares ...Middleware) {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	if a.opts.Debug {
		name += debugSuffix
	}
	a.routes[name] = handler
}

// Commands returns the registered command names in sorted order.
func (a *App) Commands() []string {
	names := make([]string, 0, len(a.routes))
	for name := range a.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handle dispatches req. Unknown commands are ignored.
func (a *App) Handle(ctx context.Context, req Request) error {
	name := strings.ToLower(strings.TrimSpace(req.Command))
	handler, ok := a.routes[name]
	if !ok {
		a.logger.Debug().Str("command", name).Int64("chat_id", req.Chat.ID).Msg("unhandled command")
		return nil
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	logger := a.logger.With().
		Str("request_id", req.ID).
		Str("command", name).
		Int64("chat_id", req.Chat.ID).
		Logger()
	logger.Info().Str("sender", req.Sender).Msg("handle command")

	return handler(logger.WithContext(ctx), &req)
}

func (a *App) reply(ctx context.Context, req *Request, text string) error {
	if _, err := a.transport.SendText(ctx, req.Chat.ID, text); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("reply not delivered")
		return err
	}
	return nil
}

// replyMarkdown sends markdown, falling back to plain when the transport
// rejects the formatted text.
func (a *App) replyMarkdown(ctx context.Context, req *Request, markdown, plain string) (MessageRef, error) {
	ref, err := a.transport.SendMarkdown(ctx, req.Chat.ID, markdown)
	if err == nil {
		return ref, nil
	}
	logger := zerolog.Ctx(ctx)
	logger.Warn().Err(err).Msg("markdown reply rejected, sending plain text")

	ref, err = a.transport.SendText(ctx, req.Chat.ID, plain)
	if err != nil {
		logger.Warn().Err(err).Msg("reply not delivered")
		return MessageRef{}, err
	}
	return ref, nil
}
