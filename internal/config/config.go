// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token         string `yaml:"token"`
	OperatorID    int64  `yaml:"operator_id"`
	SupportPseudo string `yaml:"support_pseudo"`
	Workers       int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type SessionConfig struct {
	Capacity     int           `yaml:"capacity"` // concurrent sessions before eviction sweeps kick in
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxFiles     int           `yaml:"max_files"` // attachments per order
	MaxFileBytes int64         `yaml:"max_file_bytes"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OpsConfig struct {
	Port int `yaml:"port"`
}

type BankConfig struct {
	IBAN   string `yaml:"iban"`
	BIC    string `yaml:"bic"`
	Holder string `yaml:"holder"`
	Bank   string `yaml:"bank"`
}

// PaymentConfig overrides the built-in payout coordinates. Empty fields keep
// the catalog defaults.
type PaymentConfig struct {
	Bank            BankConfig        `yaml:"bank"`
	CryptoAddresses map[string]string `yaml:"crypto_addresses"` // code -> address
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Ops     OpsConfig     `yaml:"ops"`
	Payment PaymentConfig `yaml:"payment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.OperatorID == 0 {
		return nil, errors.New("bot.operator_id is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its production default.
func (cfg *Config) ApplyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.SupportPseudo == "" {
		cfg.Bot.SupportPseudo = "Support Académique"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Session.Capacity <= 0 {
		cfg.Session.Capacity = 100
	}
	if cfg.Session.IdleTimeout <= 0 {
		cfg.Session.IdleTimeout = 30 * time.Minute
	}
	if cfg.Session.MaxFiles <= 0 {
		cfg.Session.MaxFiles = 5
	}
	if cfg.Session.MaxFileBytes <= 0 {
		cfg.Session.MaxFileBytes = 20 << 20
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 8081
	}
}
