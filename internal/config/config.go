// Package config loads and exposes application configuration (TOML plus environment overrides).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath      = "config.toml"
	DefaultDotEnvPath      = ".env"
	DefaultPollTimeout     = 30
	DefaultHandleTimeout   = "30s"
	DefaultRateLimit       = 25
	DefaultStorageProvider = "s3"
	DefaultStorageDomain   = "wasabisys.com"
	DefaultRefTTL          = "1h"
)

// Storage backends accepted in storage.provider.
const (
	ProviderS3    = "s3"
	ProviderMinIO = "minio"
)

// Environment variables that override values from the config file.
const (
	EnvConfigPath = "CONFIG_PATH"
	EnvBotToken   = "BOT_TOKEN"
	EnvAccessKey  = "WASABI_ACCESS_KEY"
	EnvSecretKey  = "WASABI_SECRET_KEY"
	EnvBucket     = "WASABI_BUCKET_NAME"
	EnvRegion     = "WASABI_REGION"
	EnvLogLevel   = "LOG_LEVEL"
	EnvLogFormat  = "LOG_FORMAT"
)

// Config is the root application configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
	Storage  StorageConfig  `toml:"storage"`
	Links    LinksConfig    `toml:"links"`
	Callback CallbackConfig `toml:"callback"`
	Server   ServerConfig   `toml:"server"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TelegramConfig holds the bot token and update loop tuning.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	// PollTimeout is the long-poll timeout for getUpdates, in seconds.
	PollTimeout   int    `toml:"poll_timeout"`
	HandleTimeout string `toml:"handle_timeout"`
	// RateLimit caps outbound API calls per second. Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	Debug     bool    `toml:"debug"`
}

// StorageConfig describes the S3-compatible bucket the bot browses.
type StorageConfig struct {
	Provider  string `toml:"provider"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Domain    string `toml:"domain"`
	// Endpoint overrides the https://s3.<region>.<domain> derivation.
	Endpoint     string `toml:"endpoint"`
	Prefix       string `toml:"prefix"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// LinksConfig controls link generation.
type LinksConfig struct {
	VerifyExists bool `toml:"verify_exists"`
}

// CallbackConfig controls the reference table used for keys too long for callback data.
type CallbackConfig struct {
	RefTTL string `toml:"ref_ttl"`
}

// ServerConfig holds the optional health server listen address. Empty disables it.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EndpointURL returns the storage endpoint, deriving https://s3.<region>.<domain> unless Endpoint is set.
func (c StorageConfig) EndpointURL() string {
	if endpoint := strings.TrimSpace(c.Endpoint); endpoint != "" {
		return strings.TrimRight(endpoint, "/")
	}
	domain := strings.TrimSpace(c.Domain)
	if domain == "" {
		domain = DefaultStorageDomain
	}
	return "https://s3." + strings.TrimSpace(c.Region) + "." + domain
}

// HandleTimeoutDuration parses HandleTimeout, falling back to the default on empty or invalid input.
func (c TelegramConfig) HandleTimeoutDuration() time.Duration {
	return parseDuration(c.HandleTimeout, DefaultHandleTimeout)
}

// RefTTLDuration parses RefTTL, falling back to the default on empty or invalid input.
func (c CallbackConfig) RefTTLDuration() time.Duration {
	return parseDuration(c.RefTTL, DefaultRefTTL)
}

func parseDuration(value, fallback string) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telegram: TelegramConfig{
			PollTimeout:   DefaultPollTimeout,
			HandleTimeout: DefaultHandleTimeout,
			RateLimit:     DefaultRateLimit,
		},
		Storage: StorageConfig{
			Provider:     DefaultStorageProvider,
			Domain:       DefaultStorageDomain,
			UsePathStyle: true,
		},
		Links: LinksConfig{
			VerifyExists: true,
		},
		Callback: CallbackConfig{
			RefTTL: DefaultRefTTL,
		},
	}
}

// Load reads the TOML config file at path, applies defaults for missing fields and
// then environment overrides. Variables may also come from a .env file in the
// working directory; the process environment wins over it. Missing files are not
// an error.
func Load(path string) (Config, error) {
	return load(path, DefaultDotEnvPath)
}

func load(path, dotEnvPath string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	dotEnv, err := readDotEnv(dotEnvPath)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg, func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return value, true
		}
		value, ok := dotEnv[key]
		return value, ok
	})
	return cfg, nil
}

// readDotEnv parses a dotenv file without touching the process environment.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	set(&cfg.Telegram.BotToken, EnvBotToken)
	set(&cfg.Storage.AccessKey, EnvAccessKey)
	set(&cfg.Storage.SecretKey, EnvSecretKey)
	set(&cfg.Storage.Bucket, EnvBucket)
	set(&cfg.Storage.Region, EnvRegion)
	set(&cfg.Log.Level, EnvLogLevel)
	set(&cfg.Log.Format, EnvLogFormat)
}

// Validate reports every missing or malformed field required to run the bot.
// Storage-only commands call ValidateStorage instead.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		errs = append(errs, errors.New("telegram.bot_token (or "+EnvBotToken+") is required"))
	}
	if err := c.ValidateStorage(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateStorage checks the storage section only.
func (c Config) ValidateStorage() error {
	var errs []error
	switch strings.ToLower(strings.TrimSpace(c.Storage.Provider)) {
	case ProviderS3, ProviderMinIO:
	default:
		errs = append(errs, fmt.Errorf("storage.provider %q is not supported", c.Storage.Provider))
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		errs = append(errs, errors.New("storage.bucket (or "+EnvBucket+") is required"))
	}
	if strings.TrimSpace(c.Storage.Region) == "" {
		errs = append(errs, errors.New("storage.region (or "+EnvRegion+") is required"))
	}
	if strings.TrimSpace(c.Storage.AccessKey) == "" || strings.TrimSpace(c.Storage.SecretKey) == "" {
		errs = append(errs, errors.New("storage.access_key and storage.secret_key are required"))
	}
	endpoint := c.Storage.EndpointURL()
	if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
		errs = append(errs, fmt.Errorf("storage endpoint %q must be an http(s) URL", endpoint))
	}
	return errors.Join(errs...)
}
