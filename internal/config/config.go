package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`

	DatabaseURL string `env:"DATABASE_URL"`

	// Evaluator fan-out. The timeout bounds the whole five-call batch; each
	// call inherits it.
	EvaluatorURL     string        `env:"EVALUATOR_URL" envDefault:"http://localhost:9000"`
	EvaluatorTimeout time.Duration `env:"EVALUATOR_TIMEOUT" envDefault:"40s"`

	QualifyWorkers int           `env:"QUALIFY_WORKERS" envDefault:"2"`
	WorkerPoll     time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"500ms"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`
}

type SMTPConfig struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM_EMAIL"`
	FromName string `env:"FROM_NAME" envDefault:"MatrixLead AI"`
}

// Configured reports whether the transport has enough to attempt delivery.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Password != ""
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}
