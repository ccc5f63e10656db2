package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"barber-queue/internal/catalog"
	"barber-queue/internal/config"
	"barber-queue/internal/controller"
	"barber-queue/internal/gate"
	"barber-queue/internal/helper"
	"barber-queue/internal/http/handler"
	"barber-queue/internal/http/router"
	"barber-queue/internal/identity"
	"barber-queue/internal/logger"
	"barber-queue/internal/payment"
	"barber-queue/internal/realtime"
	"barber-queue/internal/store"

	"go.uber.org/zap"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if !config.LoadEnv() {
		log.Println("no .env file, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	rdb, err := config.NewRedis(cfg)
	if err != nil {
		logger.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()

	db, err := config.NewDB(cfg)
	if err != nil {
		logger.Fatal("mysql unavailable", zap.Error(err))
	}
	defer db.Close()

	tokens := config.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	provider := identity.NewMySQLProvider(db, tokens)

	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = provider.EnsureSchema(schemaCtx)
	cancel()
	if err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	sessions := store.NewRedisStore(rdb, cfg.SessionTTL)
	hub := realtime.NewHub()

	opts := []controller.Option{controller.WithPublisher(hub)}
	if cfg.ShopOpen != "" {
		hours, err := helper.ParseOpeningHours(cfg.ShopOpen, cfg.ShopClose, cfg.ShopTimezone)
		if err != nil {
			logger.Fatal("opening hours", zap.Error(err))
		}
		opts = append(opts, controller.WithOpeningHours(hours.IsOpen))
	}

	ctrl := controller.New(
		sessions,
		catalog.Default(),
		controller.FixedEstimator{
			Position:     cfg.QueuePosition,
			WaitMinutes:  cfg.QueueWaitMinutes,
			TotalWaiting: cfg.QueueTotalWaiting,
		},
		payment.NewSimulatedProcessor(cfg.PaymentProcessingDelay, cfg.PaymentCompletionDelay),
		opts...,
	)

	h := handler.New(handler.Deps{
		Gate:       gate.New(provider, sessions),
		Controller: ctrl,
		Hub:        hub,
		Phones:     sessions,
		Checks: map[string]handler.HealthCheck{
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"mysql": db.PingContext,
		},
		CookieSecure: cfg.CookieSecure,
	})

	app := router.New(h, router.Options{
		Tokens:       tokens,
		CookieSecure: cfg.CookieSecure,
		MetricsUser:  cfg.MetricsUser,
		MetricsPass:  cfg.MetricsPass,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("addr", cfg.Addr()))
	if err := app.Listen(cfg.Addr()); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}
