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

	"corpfood-backend/internal/auth"
	"corpfood-backend/internal/config"
	"corpfood-backend/internal/consul"
	"corpfood-backend/internal/orders"
	"corpfood-backend/internal/stores/kafka"
	"corpfood-backend/internal/stores/postgres"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/services/order-service/handlers"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "order-service",
		Usage: "order lifecycle for the corporate food ordering platform",
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
	cfg, err := config.Load("orders")
	if err != nil {
		return err
	}
	if cfg.EndpointPrefix == "" {
		cfg.EndpointPrefix = "/orders"
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

	store, err := orders.NewConf(db)
	if err != nil {
		return err
	}

	kafkaConf, err := kafka.NewConf(cfg.KafkaBrokers)
	if err != nil {
		slog.Warn("kafka unavailable, order events disabled", slog.String(logkey.ERROR, err.Error()))
		kafkaConf = nil
	} else {
		defer kafkaConf.Close()
	}

	// Stock reservations go through the menu service, resolved via consul.
	consulClient, err := consul.NewClient(cfg.ConsulAddress)
	if err != nil {
		return fmt.Errorf("creating consul client: %w", err)
	}
	if err := consul.RegisterService(consulClient, cfg.ServiceName, cfg.Host, cfg.Port); err != nil {
		slog.Warn("consul registration failed", slog.String(logkey.ERROR, err.Error()))
	}

	inventory := handlers.NewInventoryClient(consulClient)
	var events orders.EventProducer
	if kafkaConf != nil {
		events = kafkaConf
	}
	service := orders.NewService(store, inventory, events)

	api := handlers.API(cfg.EndpointPrefix, keys, service)
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
