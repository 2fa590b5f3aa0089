package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corpfood-backend/internal/admin"
	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/config"
	"corpfood-backend/internal/consul"
	"corpfood-backend/internal/stores/postgres"
	"corpfood-backend/internal/users"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/services/admin-service/handlers"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "admin-service",
		Usage: "platform administration for the corporate food ordering platform",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP service",
				Action: func(*cli.Context) error {
					return serve()
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("service exited", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := config.Load("admin")
	if err != nil {
		return err
	}
	if cfg.EndpointPrefix == "" {
		cfg.EndpointPrefix = "/admin"
	}

	db, err := postgres.OpenDB(cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	keys, err := auth.NewKeys(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	if err != nil {
		return err
	}

	adminConf, err := admin.NewConf(db)
	if err != nil {
		return err
	}
	usersConf, err := users.NewConf(db)
	if err != nil {
		return err
	}

	consulClient, err := consul.NewClient(cfg.ConsulAddress)
	if err != nil {
		slog.Warn("consul unavailable", slog.String(logkey.ERROR, err.Error()))
	} else if err := consul.RegisterService(consulClient, cfg.ServiceName, cfg.Host, cfg.Port); err != nil {
		slog.Warn("consul registration failed", slog.String(logkey.ERROR, err.Error()))
	}

	api := handlers.API(cfg.EndpointPrefix, keys, adminConf, usersConf)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("service listening", slog.String("Addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
