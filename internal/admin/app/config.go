package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port                 int           `env:"PORT"                     envDefault:"8080"`
	Env                  string        `env:"ENV"                      envDefault:"dev"`  // dev, staging, prod
	LogLevel             string        `env:"LOG_LEVEL"                envDefault:"info"` // debug, info, warn, error
	LogFormat            string        `env:"LOG_FORMAT"               envDefault:"json"` // json, text
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD"    envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL"    envDefault:"1h"`

	DatabaseFile   string        `env:"GODVIEW_DATABASE_FILE"    envDefault:"godview.db"`
	PepperFile     string        `env:"GODVIEW_PEPPER_FILE"      envDefault:"pepper"`
	SessionKeyFile string        `env:"GODVIEW_SESSION_KEY_FILE" envDefault:"session.key"`
	Issuer         string        `env:"GODVIEW_ISSUER"           envDefault:"godview"`
	SessionTTL     time.Duration `env:"GODVIEW_SESSION_TTL"`

	// BootstrapToken gates POST /v1/bootstrap. Empty disables the endpoint.
	BootstrapToken string `env:"BOOTSTRAP_TOKEN"`
	CookieSecure   bool   `env:"COOKIE_SECURE"`

	MainAppURL    string `env:"MAIN_APP_URL"    envDefault:"http://localhost:3000"`
	InviteBaseURL string `env:"INVITE_BASE_URL"`

	// Without an API key emails are logged and recorded but never sent.
	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM"     envDefault:"godview <noreply@localhost>"`
	EmailReplyTo string `env:"EMAIL_REPLY_TO"`
}

// LoadConfig reads the environment and fills derived defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = jwtx.DefaultSessionTTL
	}
	// Invitation links point at this panel unless told otherwise
	if cfg.InviteBaseURL == "" {
		cfg.InviteBaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	for name, raw := range map[string]string{"MAIN_APP_URL": c.MainAppURL, "INVITE_BASE_URL": c.InviteBaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.Env == "prod" && !c.CookieSecure {
		errs = append(errs, errors.New("COOKIE_SECURE must be true when ENV=prod"))
	}
	return errors.Join(errs...)
}
