package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	pairlock "github.com/pairlock/pairlock"
	"github.com/pairlock/pairlock/httpapi"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := mustLoadConfig(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting pairlockd", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	opts, err := redis.ParseURL(cfg.Redis.RedisURL)
	if err != nil {
		log.Error("redis_url_invalid", slog.String("err", err.Error()))
		os.Exit(1)
	}
	rdb := redis.NewClient(opts)

	if err := waitForRedis(rootCtx, rdb, log); err != nil {
		log.Error("redis_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("redis_connected")

	engineCfg := pairlock.DefaultConfig()
	engineCfg.Token.AccessTTL = cfg.Token.AccessTTL
	engineCfg.Token.RefreshTTL = cfg.Token.RefreshTTL
	engineCfg.Token.PrivateKey = []byte(cfg.Token.Secret)
	engineCfg.Token.Issuer = cfg.Token.Issuer

	builder := pairlock.New().
		WithConfig(engineCfg).
		WithRedis(rdb)
	if cfg.Webhook.URL != "" {
		builder = builder.WithNotifySink(pairlock.NewWebhookSink(cfg.Webhook.URL, cfg.Webhook.Timeout))
	}

	engine, err := builder.Build()
	if err != nil {
		log.Error("engine_build_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("engine_initialized")

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           httpapi.NewServer(engine, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
	}

	engine.Close()
	_ = rdb.Close()

	log.Info("service_stopped")
}

// waitForRedis pings with backoff until Redis answers or ctx ends.
func waitForRedis(ctx context.Context, rdb *redis.Client, log *slog.Logger) error {
	const attempts = 10

	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return nil
		}

		log.Warn("redis_ping_failed",
			slog.Int("attempt", i),
			slog.String("err", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i) * 500 * time.Millisecond):
		}
	}

	return err
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
