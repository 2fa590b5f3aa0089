package main

import (
	"context"
	"encoding/json"
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
	"corpfood-backend/internal/menu"
	"corpfood-backend/internal/stores/kafka"
	"corpfood-backend/internal/stores/postgres"
	"corpfood-backend/pkg/logkey"
	"corpfood-backend/services/menu-service/handlers"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "menu-service",
		Usage: "menu catalog and inventory for the corporate food ordering platform",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP service and the restock consumer",
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
	cfg, err := config.Load("menu")
	if err != nil {
		return err
	}
	if cfg.EndpointPrefix == "" {
		cfg.EndpointPrefix = "/menu"
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

	menuConf, err := menu.NewConf(db)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cancelled orders come back through kafka; the consumer returns the
	// reserved quantities to stock.
	consumer, err := kafka.NewConsumerConf(cfg.KafkaBrokers, kafka.ConsumerGroupMenu, kafka.TopicOrderCancelled)
	if err != nil {
		slog.Warn("kafka unavailable, restock consumer disabled", slog.String(logkey.ERROR, err.Error()))
	} else {
		defer consumer.Close()
		go runRestockConsumer(ctx, consumer, menuConf)
	}

	consulClient, err := consul.NewClient(cfg.ConsulAddress)
	if err != nil {
		slog.Warn("consul unavailable", slog.String(logkey.ERROR, err.Error()))
	} else if err := consul.RegisterService(consulClient, cfg.ServiceName, cfg.Host, cfg.Port); err != nil {
		slog.Warn("consul registration failed", slog.String(logkey.ERROR, err.Error()))
	}

	api := handlers.API(cfg.EndpointPrefix, keys, menuConf)
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

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func runRestockConsumer(ctx context.Context, consumer *kafka.Conf, menuConf *menu.Conf) {
	err := consumer.ConsumeMessages(ctx, func(topic string, key, value []byte) error {
		var event kafka.OrderCancelledEvent
		if err := json.Unmarshal(value, &event); err != nil {
			slog.Error("unmarshalling cancel event", slog.String(logkey.Topic, topic), slog.String(logkey.ERROR, err.Error()))
			return nil
		}

		lines := make([]menu.ReserveLine, 0, len(event.Items))
		for _, item := range event.Items {
			lines = append(lines, menu.ReserveLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
		}
		if err := menuConf.Restock(ctx, lines); err != nil {
			slog.Error("restocking cancelled order",
				slog.Int64(logkey.OrderID, event.OrderID), slog.String(logkey.ERROR, err.Error()))
			return err
		}

		slog.Info("restocked cancelled order", slog.Int64(logkey.OrderID, event.OrderID))
		return nil
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("restock consumer stopped", slog.String(logkey.ERROR, err.Error()))
	}
}
