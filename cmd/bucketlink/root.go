package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/memohai/bucketlink/internal/bucket"
	"github.com/memohai/bucketlink/internal/config"
	"github.com/memohai/bucketlink/internal/links"
	"github.com/memohai/bucketlink/internal/logger"
	"github.com/memohai/bucketlink/internal/storage/backend"
	"github.com/memohai/bucketlink/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "bucketlink",
		Short:         "Telegram bot that shares files from an S3-compatible bucket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to config.toml (default $"+config.EnvConfigPath+" or "+config.DefaultConfigPath+")")

	cmd.AddCommand(
		newServeCmd(opts),
		newFilesCmd(opts),
		newLinkCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) resolvedConfigPath() string {
	if path := strings.TrimSpace(o.configPath); path != "" {
		return path
	}
	return strings.TrimSpace(os.Getenv(config.EnvConfigPath))
}

// loadStorageConfig loads config for the storage-only commands; no bot token is needed.
func (o *rootOptions) loadStorageConfig() (config.Config, error) {
	cfg, err := config.Load(o.resolvedConfigPath())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateStorage(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	logger.InitWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func newFilesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "Print every object key in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadStorageConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := backend.Open(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			keys, err := bucket.NewLister(logger.L, store, cfg.Storage.Prefix).Keys(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	}
}

func newLinkCmd(opts *rootOptions) *cobra.Command {
	var permanent bool
	cmd := &cobra.Command{
		Use:   "link <key>",
		Short: "Print a download link for an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadStorageConfig()
			if err != nil {
				return err
			}
			url, err := generateLink(cmd.Context(), cfg, args[0], permanent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().BoolVar(&permanent, "permanent", false, "print the unsigned public URL instead of a 24 hour link")
	return cmd
}

func generateLink(ctx context.Context, cfg config.Config, key string, permanent bool) (string, error) {
	store, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		return "", err
	}
	generator := links.NewGenerator(logger.L, store, links.Options{
		Endpoint:     cfg.Storage.EndpointURL(),
		Bucket:       cfg.Storage.Bucket,
		VerifyExists: cfg.Links.VerifyExists,
	})
	if permanent {
		return generator.Permanent(key), nil
	}
	return generator.Temporary(ctx, key)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bucketlink %s\n", version.GetInfo())
		},
	}
}
