package modules

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/memohai/bucketlink/internal/bot"
	"github.com/memohai/bucketlink/internal/bucket"
	"github.com/memohai/bucketlink/internal/callback"
	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/links"
	"github.com/memohai/bucketlink/internal/telegram"
	"go.uber.org/fx"
)

var BotModule = fx.Module(
	"bot",
	fx.Provide(
		provideBotAPI,
		provideCodec,
		provideSender,
		provideDispatcher,
		provideAdapter,
	),
	fx.Invoke(startAdapter),
)

// ---------------------------------------------------------------------------
// bot providers
// ---------------------------------------------------------------------------

func provideBotAPI(log *slog.Logger, cfg config.Config) (*tgbotapi.BotAPI, error) {
	return telegram.NewBotAPI(log, cfg.Telegram.BotToken, cfg.Telegram.Debug)
}

func provideCodec(cfg config.Config) *callback.Codec {
	return callback.NewCodec(callback.NewRefStore(cfg.Callback.RefTTLDuration()))
}

func provideSender(log *slog.Logger, api *tgbotapi.BotAPI, cfg config.Config) *telegram.Sender {
	return telegram.NewSender(log, api, cfg.Telegram.RateLimit)
}

func provideDispatcher(log *slog.Logger, lister *bucket.Lister, generator *links.Generator, sender *telegram.Sender, codec *callback.Codec) *bot.Dispatcher {
	return bot.NewDispatcher(log, lister, generator, sender, codec)
}

func provideAdapter(log *slog.Logger, api *tgbotapi.BotAPI, dispatcher *bot.Dispatcher, cfg config.Config) *telegram.Adapter {
	return telegram.NewAdapter(log, api, dispatcher, telegram.Options{
		PollTimeout:   cfg.Telegram.PollTimeout,
		HandleTimeout: cfg.Telegram.HandleTimeoutDuration(),
	})
}

func startAdapter(lc fx.Lifecycle, adapter *telegram.Adapter) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// The start context expires once fx finishes starting; polling must outlive it.
			return adapter.Start(context.WithoutCancel(ctx))
		},
		OnStop: func(ctx context.Context) error {
			return adapter.Stop(ctx)
		},
	})
}
