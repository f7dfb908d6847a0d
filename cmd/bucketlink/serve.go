package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memohai/bucketlink/cmd/bucketlink/modules"
	"github.com/memohai/bucketlink/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting bucketlink %s\n", version.GetInfo())
			return runApp(cmd.Context(), newApp(opts.resolvedConfigPath()))
		},
	}
}

func newApp(configPath string) *fx.App {
	return fx.New(
		fx.Supply(modules.Options{ConfigPath: configPath}),
		modules.InfraModule,
		modules.StorageModule,
		modules.BotModule,
		modules.ServerModule,
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			l := &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
	)
}

// runApp starts app and blocks until a termination signal or fx.Shutdowner call.
func runApp(ctx context.Context, app *fx.App) error {
	if err := app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	sig := <-app.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("exited with code %d", sig.ExitCode)
	}
	return nil
}
