package config

import (
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Retention RetentionConfig `mapstructure:"retention"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// Telegram bot configuration
type BotConfig struct {
	Token   string        `mapstructure:"token"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// webhook server configuration
type WebhookConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	ListenPort string `mapstructure:"listen_port"`
	DebugPath  string `mapstructure:"debug_path"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
}

// vault and distribution channel settings
type VaultConfig struct {
	AdminIDs          []int64 `mapstructure:"admin_ids"`
	VaultChannelID    int64   `mapstructure:"vault_channel_id"`
	MainChannelID     int64   `mapstructure:"main_channel_id"`
	ForceJoinChannel  string  `mapstructure:"force_join_channel"`
	DeveloperUsername string  `mapstructure:"developer_username"`
	WelcomeImage      string  `mapstructure:"welcome_image"`
	BackupChannel     string  `mapstructure:"backup_channel"`
}

// delivered copy expiry settings
type RetentionConfig struct {
	TTL               time.Duration `mapstructure:"ttl"`
	ReaperInterval    time.Duration `mapstructure:"reaper_interval"`
	MaxDeleteAttempts int           `mapstructure:"max_delete_attempts"`
	PreviewTTL        time.Duration `mapstructure:"preview_ttl"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required")
	}
	if c.Vault.VaultChannelID == 0 {
		return fmt.Errorf("vault.vault_channel_id is required")
	}
	if c.Vault.MainChannelID == 0 {
		return fmt.Errorf("vault.main_channel_id is required")
	}
	if c.Vault.ForceJoinChannel == "" {
		return fmt.Errorf("vault.force_join_channel is required")
	}
	if len(c.Vault.AdminIDs) == 0 {
		return fmt.Errorf("vault.admin_ids must list at least one administrator")
	}
	return nil
}

// IsAdmin reports whether the user is in the configured administrator set.
func (v *VaultConfig) IsAdmin(userID int64) bool {
	return slices.Contains(v.AdminIDs, userID)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.webhook.listen_port", "8443")
	v.SetDefault("bot.webhook.debug_path", "/debug")
	v.SetDefault("bot.webhook.cert_file", "")
	v.SetDefault("bot.webhook.key_file", "")

	v.SetDefault("vault.welcome_image", "")
	v.SetDefault("vault.backup_channel", "")

	v.SetDefault("retention.ttl", time.Hour)
	v.SetDefault("retention.reaper_interval", time.Minute)
	v.SetDefault("retention.max_delete_attempts", 5)
	v.SetDefault("retention.preview_ttl", 10*time.Minute)

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.charset", "utf8mb4")
}
