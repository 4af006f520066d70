package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Bot         BotConfig         `mapstructure:"bot"`
	Restriction RestrictionConfig `mapstructure:"restriction"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Database    DatabaseConfig    `mapstructure:"database"`
}

// Telegram bot configuration
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	GroupID     int64         `mapstructure:"group_id"`
	AdminUserID int64         `mapstructure:"admin_user_id"`
	Webhook     WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration, an empty endpoint switches the bot to long polling
type WebhookConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ListenPort  string `mapstructure:"listen_port"`
	DebugPath   string `mapstructure:"debug_path"`
	MetricsPath string `mapstructure:"metrics_path"`
	CertFile    string `mapstructure:"cert_file"`
	KeyFile     string `mapstructure:"key_file"`
}

// restriction lifecycle timing
type RestrictionConfig struct {
	PeriodDays           int  `mapstructure:"period_days"`
	CheckIntervalSeconds int  `mapstructure:"check_interval_seconds"`
	FirstRunDelaySeconds int  `mapstructure:"first_run_delay_seconds"`
	NotifyNoUsers        bool `mapstructure:"notify_no_users"`
}

// admin notification settings
type NotifyConfig struct {
	Language string `mapstructure:"language"`
}

// logging configuration
type LoggerConfig struct {
	Directory  string            `mapstructure:"directory"`
	Rotation   LogRotationConfig `mapstructure:"rotation"`
	Timezone   string            `mapstructure:"timezone"`
	TimeFormat string            `mapstructure:"time_format"`
	Level      string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"`
}

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// envBindings keeps the environment variable names the bot has always been deployed with.
var envBindings = map[string]string{
	"bot.token":                          "BOT_TOKEN",
	"bot.group_id":                       "GROUP_ID",
	"bot.admin_user_id":                  "ADMIN_USER_ID",
	"bot.webhook.endpoint":               "WEBHOOK_ENDPOINT",
	"bot.webhook.listen_port":            "LISTEN_PORT",
	"database.driver":                    "DATABASE_DRIVER",
	"database.path":                      "DATABASE_PATH",
	"restriction.period_days":            "RESTRICTION_PERIOD_DAYS",
	"restriction.check_interval_seconds": "CHECK_INTERVAL_SECONDS",
	"restriction.notify_no_users":        "NOTIFY_NO_USERS",
	"notify.language":                    "NOTIFY_LANGUAGE",
	"logger.level":                       "LOG_LEVEL",
}

var cfg *Config

// Load reads the configuration file (optional when configPath is empty or missing),
// the .env file if present, and environment overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env file: %v", err)
	}

	v := viper.New()

	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding env %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			log.Printf("Config file %s not found, using defaults and environment", configPath)
		} else {
			log.Printf("Using config file: %s", v.ConfigFileUsed())
		}
	}

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

// Validate checks the values the bot cannot run without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is required (bot.token or BOT_TOKEN)")
	}
	if c.Bot.GroupID == 0 {
		return fmt.Errorf("group id is required (bot.group_id or GROUP_ID)")
	}
	if c.Restriction.PeriodDays <= 0 {
		return fmt.Errorf("restriction period must be positive, got %d days", c.Restriction.PeriodDays)
	}
	if c.Restriction.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("check interval must be positive, got %d seconds", c.Restriction.CheckIntervalSeconds)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// GracePeriod is how long a member stays restricted before the sweep removes them.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Restriction.PeriodDays) * 24 * time.Hour
}

func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Restriction.CheckIntervalSeconds) * time.Second
}

func (c *Config) FirstRunDelay() time.Duration {
	return time.Duration(c.Restriction.FirstRunDelaySeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.admin_user_id", 0)
	v.SetDefault("bot.webhook.endpoint", "")
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.debug_path", "/debug")
	v.SetDefault("bot.webhook.metrics_path", "/metrics")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("restriction.period_days", 30)
	v.SetDefault("restriction.check_interval_seconds", 3600)
	v.SetDefault("restriction.first_run_delay_seconds", 10)
	v.SetDefault("restriction.notify_no_users", false)

	v.SetDefault("notify.language", "en")

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.timezone", "Local")
	v.SetDefault("logger.time_format", "2006/01/02 15:04:05")
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "data/spam_restrictor.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "WARNING")
}
