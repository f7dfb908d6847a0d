// Package telegram connects the bot dispatcher to the Telegram Bot API: it
// long-polls updates, converts them into bot events and sends replies.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/memohai/bucketlink/internal/bot"
	"github.com/memohai/bucketlink/internal/logger"
)

// Handler consumes bot events. *bot.Dispatcher implements it.
type Handler interface {
	HandleCommand(ctx context.Context, cmd bot.Command) error
	HandleCallback(ctx context.Context, cb bot.Callback) error
}

// Options tunes the update loop.
type Options struct {
	// PollTimeout is the getUpdates long-poll timeout in seconds.
	PollTimeout int
	// HandleTimeout bounds the handling of a single update.
	HandleTimeout time.Duration
}

// botCommands are advertised to Telegram clients at startup.
var botCommands = []tgbotapi.BotCommand{
	{Command: bot.CommandFiles, Description: "Browse files in storage"},
	{Command: bot.CommandHelp, Description: "How to use this bot"},
}

// NewBotAPI authenticates token against Telegram and routes library logs to log.
func NewBotAPI(log *slog.Logger, token string, debug bool) (*tgbotapi.BotAPI, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := tgbotapi.SetLogger(&slogBotLogger{log: log.With(slog.String("component", "tgbotapi"))}); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// Adapter runs the long-poll loop and hands each update to the Handler in its
// own goroutine.
type Adapter struct {
	api         *tgbotapi.BotAPI
	handler     Handler
	opts        Options
	botUsername string
	base        *slog.Logger
	logger      *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	loopDone chan struct{}
	inflight sync.WaitGroup
}

// NewAdapter returns an Adapter. api may be nil in tests that only exercise dispatch.
func NewAdapter(log *slog.Logger, api *tgbotapi.BotAPI, handler Handler, opts Options) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30
	}
	if opts.HandleTimeout <= 0 {
		opts.HandleTimeout = 30 * time.Second
	}
	a := &Adapter{
		api:     api,
		handler: handler,
		opts:    opts,
		base:    log,
		logger:  log.With(slog.String("adapter", "telegram")),
	}
	if api != nil {
		a.botUsername = api.Self.UserName
	}
	return a
}

// Start registers the command list and begins polling. It returns immediately.
func (a *Adapter) Start(ctx context.Context) error {
	if a.api == nil {
		return errors.New("telegram: adapter has no bot api")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return errors.New("telegram: adapter already started")
	}

	if _, err := a.api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		a.logger.Warn("register commands failed", slog.Any("error", err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = a.opts.PollTimeout
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}
	updates := a.api.GetUpdatesChan(updateConfig)

	loopCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.loopDone = make(chan struct{})
	a.logger.Info("start", slog.String("username", a.botUsername))

	go func() {
		defer close(a.loopDone)
		for {
			select {
			case <-loopCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					a.logger.Info("updates channel closed")
					return
				}
				a.dispatch(loopCtx, update)
			}
		}
	}()
	return nil
}

// Stop ends polling and waits for in-flight updates until ctx expires.
func (a *Adapter) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel, loopDone := a.cancel, a.loopDone
	a.cancel = nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}

	a.logger.Info("stop")
	cancel()
	a.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		<-loopDone
		a.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram: waiting for in-flight updates: %w", ctx.Err())
	}
}

// dispatch converts update into an event and handles it asynchronously.
// Handlers outlive the poll loop's cancellation so Stop can drain them. The
// handler context carries a request logger tagged with the update id.
func (a *Adapter) dispatch(ctx context.Context, update tgbotapi.Update) {
	var run func(context.Context) error
	log := a.logger.With(slog.Int("update_id", update.UpdateID))

	switch {
	case update.CallbackQuery != nil:
		cb, ok := callbackFromQuery(update.CallbackQuery)
		if !ok {
			return
		}
		log = log.With(slog.Int64("chat_id", cb.ChatID), slog.String("username", cb.Username))
		run = func(ctx context.Context) error { return a.handler.HandleCallback(ctx, cb) }
	case update.Message != nil:
		cmd, ok := commandFromMessage(update.Message, a.botUsername)
		if !ok {
			return
		}
		log = log.With(slog.Int64("chat_id", cmd.ChatID), slog.String("command", cmd.Name), slog.String("username", cmd.Username))
		run = func(ctx context.Context) error { return a.handler.HandleCommand(ctx, cmd) }
	default:
		return
	}

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("handler panic", slog.Any("panic", r))
			}
		}()
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.opts.HandleTimeout)
		defer cancel()
		hctx = logger.WithContext(hctx, a.base.With(slog.Int("update_id", update.UpdateID)))
		if err := run(hctx); err != nil {
			log.Error("handle update failed", slog.Any("error", err))
		}
	}()
}

// commandFromMessage extracts a slash command. Commands addressed to another
// bot (/files@otherbot) are skipped.
func commandFromMessage(msg *tgbotapi.Message, botUsername string) (bot.Command, bool) {
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return bot.Command{}, false
	}
	if _, target, found := strings.Cut(msg.CommandWithAt(), "@"); found && botUsername != "" && !strings.EqualFold(target, botUsername) {
		return bot.Command{}, false
	}
	cmd := bot.Command{
		ChatID: msg.Chat.ID,
		Name:   strings.ToLower(msg.Command()),
	}
	if msg.From != nil {
		cmd.UserID = msg.From.ID
		cmd.Username = strings.TrimSpace(msg.From.UserName)
	}
	return cmd, true
}

// callbackFromQuery converts a button press. Presses on inline-mode messages
// carry no chat; the reply then goes to the user's private chat.
func callbackFromQuery(q *tgbotapi.CallbackQuery) (bot.Callback, bool) {
	if q == nil || strings.TrimSpace(q.ID) == "" {
		return bot.Callback{}, false
	}
	cb := bot.Callback{ID: q.ID, Data: q.Data}
	if q.From != nil {
		cb.UserID = q.From.ID
		cb.Username = strings.TrimSpace(q.From.UserName)
	}
	switch {
	case q.Message != nil && q.Message.Chat != nil:
		cb.ChatID = q.Message.Chat.ID
	case q.From != nil:
		cb.ChatID = q.From.ID
	default:
		return bot.Callback{}, false
	}
	return cb, true
}
