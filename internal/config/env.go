package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env holds settings read from the environment. Zero values mean unset.
type Env struct {
	Subject  string `env:"SPERLING_SUBJECT"`
	FPS      int    `env:"SPERLING_FPS"`
	LogLevel string `env:"SPERLING_LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"SPERLING_DB"`
	Seed     *int64 `env:"SPERLING_SEED"`
}

// LoadEnv loads dotenv files that exist, without overriding variables that are
// already set, and parses the environment.
func LoadEnv(dotenv ...string) (Env, error) {
	for _, path := range dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
