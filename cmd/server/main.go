package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/api"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/export"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/feed"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/gateway"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/hub"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/registry"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/store"
	"github.com/fasihgithub/LivePricesProject/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	// Price store: in-memory by default, Redis when configured.
	var priceStore store.Store
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		priceStore = store.NewRedisStore(rdb)
		logger.Info("Using Redis price store", zap.String("addr", cfg.Redis.Addr))
	} else {
		priceStore = store.NewMemoryStore()
	}
	defer priceStore.Close()

	reg := registry.New()
	wsHub := hub.NewHub(reg, logger)

	// Optional quote export to Kafka.
	var exporter feed.Exporter
	if cfg.Kafka.Enabled {
		writer := &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        cfg.Kafka.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		}
		kafkaExporter := export.NewExporter(writer, logger)
		defer kafkaExporter.Close()
		exporter = kafkaExporter
		logger.Info("Quote export enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	ingestor := feed.NewIngestor(cfg.Feed.URL, cfg.Feed.ReconnectDelay, priceStore, wsHub, exporter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ingestor.Run(ctx)

	// Periodic connection count, useful when watching the service live.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("Connected clients", zap.Int("count", wsHub.Count()))
			case <-ctx.Done():
				return
			}
		}
	}()

	mux := http.NewServeMux()
	api.NewHandler(priceStore, logger).Register(mux)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.Warn("Upgrade failed", zap.Error(err))
			return
		}
		client := gateway.NewClient(conn, logger)
		client.Start()
		wsHub.Add(client)
	})

	srv := &http.Server{Addr: cfg.App.Port, Handler: mux}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("Shutdown Complete")
}
