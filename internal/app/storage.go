package app

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-todo-client/internal/config"
	"github.com/adanyl0v/go-todo-client/internal/session"
)

// openSessionStorage returns the configured session storage and a func
// releasing it.
func openSessionStorage(ctx context.Context, cfg *config.Config) (session.Storage, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		return connectRedisStorage(ctx, cfg)
	case config.SessionStoreFile:
		path := cfg.Session.File
		if path == "" {
			var err error
			path, err = session.DefaultFilePath()
			if err != nil {
				globalLogger.Error().
					Err(err).
					Msg("failed to resolve session file path")
				return nil, nil, err
			}
		}
		globalLogger.Debug().
			Str("path", path).
			Msg("using session file")
		return session.NewFileStorage(path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store: %s", cfg.Session.Store)
	}
}

func connectRedisStorage(ctx context.Context, cfg *config.Config) (session.Storage, func(), error) {
	redisCfg := cfg.Redis

	client, err := session.ConnectRedis(ctx, redisCfg.Addr, redisCfg.Password, redisCfg.DB)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("addr", redisCfg.Addr).
			Msg("failed to connect to redis")
		return nil, nil, err
	}
	globalLogger.Debug().
		Str("addr", redisCfg.Addr).
		Int("db", redisCfg.DB).
		Msg("connected to redis")

	disconnect := func() {
		err := client.Close()
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("failed to disconnect from redis")
			return
		}
		globalLogger.Debug().Msg("disconnected from redis")
	}
	return session.NewRedisStorage(client, cfg.Session.RedisPrefix), disconnect, nil
}
