package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	SecretKey   string `mapstructure:"SECRET_KEY"`

	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	CatalogFile string `mapstructure:"CATALOG_FILE"`
	AuditLog    string `mapstructure:"AUDIT_LOG"`

	MailEnabled  bool   `mapstructure:"MAIL_ENABLED"`
	MailServer   string `mapstructure:"MAIL_SERVER"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUsername string `mapstructure:"MAIL_USERNAME"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailUseTLS   bool   `mapstructure:"MAIL_USE_TLS"`
	MailUseSSL   bool   `mapstructure:"MAIL_USE_SSL"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("CATALOG_FILE", "./catalogs.json")
	v.SetDefault("AUDIT_LOG", "./audit.log")
	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USE_TLS", true)
	v.SetDefault("MAIL_USE_SSL", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("SECRET_KEY")
	v.BindEnv("UPLOAD_DIR")
	v.BindEnv("CATALOG_FILE")
	v.BindEnv("AUDIT_LOG")
	v.BindEnv("MAIL_ENABLED")
	v.BindEnv("MAIL_SERVER")
	v.BindEnv("MAIL_PORT")
	v.BindEnv("MAIL_USERNAME")
	v.BindEnv("MAIL_PASSWORD")
	v.BindEnv("MAIL_USE_TLS")
	v.BindEnv("MAIL_USE_SSL")
	v.BindEnv("MAIL_FROM")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks constraints beyond the bare minimum required to start.
// Mail settings are only validated when mail is actually enabled; the
// notification layer is optional and the server must run without it.
func (c *Config) Validate() error {
	if c.MailEnabled {
		if c.MailServer == "" {
			return fmt.Errorf("MAIL_SERVER is required when MAIL_ENABLED is true")
		}
		if c.MailFrom == "" && c.MailUsername == "" {
			return fmt.Errorf("MAIL_FROM or MAIL_USERNAME is required when MAIL_ENABLED is true")
		}
		if c.MailUseTLS && c.MailUseSSL {
			return fmt.Errorf("MAIL_USE_TLS and MAIL_USE_SSL are mutually exclusive")
		}
	}
	return nil
}

// MailSender returns the effective from-address, falling back to the SMTP
// username the way the legacy deployment did.
func (c *Config) MailSender() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return c.MailUsername
}
