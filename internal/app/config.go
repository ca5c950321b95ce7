package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-todo-client/internal/config"
)

func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Debug().
		Str("env", cfg.Env).
		Str("api_url", cfg.API.BaseURL).
		Str("session_store", cfg.Session.Store).
		Msg("read env")

	config.SetGlobal(cfg)
}
