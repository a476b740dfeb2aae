package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/vampire-games/vampired/internal/api"
	"github.com/vampire-games/vampired/internal/cache/cachelru"
	"github.com/vampire-games/vampired/internal/database"
	sessionDb "github.com/vampire-games/vampired/internal/database/session/database"
	"github.com/vampire-games/vampired/internal/engine"
	"github.com/vampire-games/vampired/internal/logging"
	"github.com/vampire-games/vampired/internal/passcode"
	"github.com/vampire-games/vampired/internal/server"
	"github.com/vampire-games/vampired/internal/shutdown"
	"github.com/vampire-games/vampired/internal/sse"
	"github.com/kelseyhightower/envconfig"
)

func main() {
	ctx, done := shutdown.New()
	defer done()

	config := api.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, config, done); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config api.Config, done func()) error {
	logger := logging.FromContext(ctx).Named("main.realMain")

	db, err := database.NewFromEnv(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer db.Close(ctx)

	sessionCache, err := cachelru.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	sessions := sessionDb.New(db, sessionCache)
	hasher := passcode.NewHasher(config.PasscodeIterations, config.PasscodePepper)
	eng := engine.New(engine.NewMemoryStore())
	hub := sse.NewHub()

	handler := api.New(&config, eng, sessions, hasher, hub)

	mux := handler.Routes()
	mux.Handle("/health", server.HandleHealth(ctx))

	go func() {
		if err := http.ListenAndServe(":"+config.ProfPort, nil); err != nil {
			logger.Errorf("pprof default server: %v", err)
			done()
		}
	}()

	return srv.ServeHTTP(ctx, &http.Server{Handler: mux})
}
