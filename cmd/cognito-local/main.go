// Command cognito-local runs the identity provider emulator over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goCognito "github.com/MrEthical07/goCognito"
	"github.com/MrEthical07/goCognito/delivery"
	"github.com/MrEthical07/goCognito/internal/config"
	"github.com/MrEthical07/goCognito/internal/logging"
	"github.com/MrEthical07/goCognito/internal/server"
	"github.com/MrEthical07/goCognito/store"
	"github.com/MrEthical07/goCognito/token"
	"github.com/MrEthical07/goCognito/triggers"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; defaults to ./cognito-local.yaml when present")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "cognito-local: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, cleanup, err := openRedis(cfg.RedisAddr, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	st := store.New(client, cfg.RedisPrefix)
	if err := st.Seed(ctx, cfg.Seed, time.Now()); err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	logger.Info("store seeded",
		zap.Int("user_pools", len(cfg.Seed.UserPools)),
		zap.Int("app_clients", len(cfg.Seed.AppClients)),
		zap.Int("users", len(cfg.Seed.Users)),
	)

	keys, err := loadKeys(cfg.Tokens)
	if err != nil {
		return err
	}

	codes, err := newCodeDelivery(cfg.SMTP, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := goCognito.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	engine, err := goCognito.New().
		WithConfig(cfg.Engine()).
		WithCognito(st).
		WithTriggers(triggers.New()).
		WithCodeDelivery(codes).
		WithKeys(keys).
		WithLogger(logger.Named("engine")).
		WithMetrics(metrics).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      server.New(engine, keys, reg, logger.Named("http")),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("key_id", keys.KeyID()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openRedis connects to addr, or starts an in-process miniredis when addr is
// empty so the emulator runs with no external services.
func openRedis(addr string, logger *zap.Logger) (redis.UniversalClient, func(), error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		logger.Info("using in-process miniredis", zap.String("addr", mr.Addr()))
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	logger.Info("using redis", zap.String("addr", addr))
	return client, func() { _ = client.Close() }, nil
}

func loadKeys(cfg config.TokenConfig) (*token.RSAKeys, error) {
	var pem []byte
	if cfg.PrivateKeyFile != "" {
		raw, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key: %w", err)
		}
		pem = raw
	}
	keys, err := token.NewRSAKeys(token.Config{KeyID: cfg.KeyID, PrivateKey: pem})
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	return keys, nil
}

func newCodeDelivery(smtp delivery.SMTPConfig, logger *zap.Logger) (*delivery.Messages, error) {
	sms := delivery.NewLogSender(logger.Named("sms"))
	if smtp.Host == "" {
		return delivery.NewMessages(delivery.NewLogSender(logger.Named("email")), sms), nil
	}
	email, err := delivery.NewSMTPSender(smtp)
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	return delivery.NewMessages(email, sms), nil
}
