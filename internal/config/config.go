package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/paisabot/paisabot/internal/errors"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
)

// Config holds all configuration for paisabot.
type Config struct {
	Server       ServerConfig         `mapstructure:"server"`
	Storage      StorageConfig        `mapstructure:"storage"`
	Channels     ChannelsConfig       `mapstructure:"channels"`
	Security     SecurityConfig       `mapstructure:"security"`
	Currency     string               `mapstructure:"currency"`
	Vocabularies lexicon.Vocabularies `mapstructure:"vocabularies"`
	Budget       ledger.BudgetConfig  `mapstructure:"budget"`
	Schedule     ScheduleConfig       `mapstructure:"schedule"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// ChannelsConfig holds chat channel settings.
type ChannelsConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	BotToken  string  `mapstructure:"bot_token"`
	AllowList []int64 `mapstructure:"allow_list"`
}

// SecurityConfig holds API auth settings.
type SecurityConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	AdminPassword string   `mapstructure:"admin_password"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
}

// ScheduleConfig holds the daily summary job settings.
type ScheduleConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	DailySummaryCron string `mapstructure:"daily_summary_cron"`
}

// Load loads configuration from file, env, and defaults.
func Load(configPath, dataDir string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "paisabot.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	explicitPath := configPath != ""
	if configPath == "" {
		configPath = filepath.Join(dataDir, "paisabot.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if explicitPath {
		// A missing default file is fine; a missing requested file is not.
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, configPath)
	}

	// Environment variables (PAISABOT_SERVER_PORT, PAISABOT_CURRENCY, etc.)
	v.SetEnvPrefix("PAISABOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	// Domain defaults
	v.SetDefault("currency", "₹")
	defaults := lexicon.DefaultVocabularies()
	v.SetDefault("vocabularies.categories", defaults.Categories)
	v.SetDefault("vocabularies.payment_modes", defaults.PaymentModes)
	v.SetDefault("vocabularies.upi_apps", defaults.UPIApps)
	v.SetDefault("budget.amount", 0.0)
	v.SetDefault("budget.period", string(ledger.BudgetMonthly))

	// Schedule defaults: daily summary at 21:00
	v.SetDefault("schedule.enabled", false)
	v.SetDefault("schedule.daily_summary_cron", "0 21 * * *")

	// Security defaults
	v.SetDefault("security.allow_origins", []string{"*"})
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "paisabot")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "paisabot")
}

// loadEnvOverrides loads specific env vars that Viper doesn't pick up from
// nested keys reliably.
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Currency = getEnv("PAISABOT_CURRENCY", cfg.Currency)

	cfg.Server.Address = getEnv("PAISABOT_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("PAISABOT_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("PAISABOT_STORAGE_DATA_DIR", cfg.Storage.DataDir)

	cfg.Security.JWTSecret = getEnv("PAISABOT_SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.AdminPassword = getEnv("PAISABOT_SECURITY_ADMIN_PASSWORD", cfg.Security.AdminPassword)

	cfg.Channels.Telegram.BotToken = getEnv("PAISABOT_CHANNELS_TELEGRAM_BOT_TOKEN", cfg.Channels.Telegram.BotToken)
	if cfg.Channels.Telegram.BotToken != "" && os.Getenv("PAISABOT_CHANNELS_TELEGRAM_ENABLED") == "true" {
		cfg.Channels.Telegram.Enabled = true
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d", apperrors.ErrConfigInvalid, cfg.Server.Port)
	}
	if cfg.Budget.Amount < 0 {
		return fmt.Errorf("%w: budget amount cannot be negative", apperrors.ErrConfigInvalid)
	}
	switch cfg.Budget.Period {
	case ledger.BudgetWeekly, ledger.BudgetMonthly, ledger.BudgetYearly:
	default:
		return fmt.Errorf("%w: budget period %q", apperrors.ErrConfigInvalid, cfg.Budget.Period)
	}
	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.BotToken == "" {
		return fmt.Errorf("%w: telegram enabled but no bot token configured", apperrors.ErrConfigInvalid)
	}
	return nil
}
