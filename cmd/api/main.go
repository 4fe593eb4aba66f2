package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gabinetefacil/gabinete/internal/acesso"
	"github.com/gabinetefacil/gabinete/internal/auth"
	"github.com/gabinetefacil/gabinete/internal/config"
	"github.com/gabinetefacil/gabinete/internal/db"
	"github.com/gabinetefacil/gabinete/internal/gabinete"
	internalhttp "github.com/gabinetefacil/gabinete/internal/http"
	"github.com/gabinetefacil/gabinete/internal/repo"
	"github.com/gabinetefacil/gabinete/internal/service"
	"github.com/gabinetefacil/gabinete/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	queries := repo.New(pool)
	gabineteRepo := gabinete.NewRepository(pool)
	gabineteService := gabinete.NewService(gabineteRepo)
	acessoRepo := acesso.NewRepository(pool)

	resolver := session.NewResolver(queries, gabineteRepo)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(queries, redisClient, resolver, acessoRepo, jwtManager, cfg.JWTRefreshTTL)

	handler, sweeper, err := internalhttp.NewRouter(cfg, pool, redisClient, authService, gabineteService, acessoRepo)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// espera os jobs agendados em andamento antes de sair
	sweeper.Stop()
	return nil
}
