package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	vpnbotroot "github.com/kvant-lab/vpnbot"
	"github.com/kvant-lab/vpnbot/internal/config"
	"github.com/kvant-lab/vpnbot/internal/handler"
	"github.com/kvant-lab/vpnbot/internal/httpapi"
	"github.com/kvant-lab/vpnbot/internal/middleware"
	"github.com/kvant-lab/vpnbot/internal/repository"
	"github.com/kvant-lab/vpnbot/internal/repository/sqlc"
	"github.com/kvant-lab/vpnbot/internal/service"
	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(vpnbotroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	queries := sqlc.New(pool)
	store := repository.NewStore(pool, queries)

	jobs := worker.NewPool(config.WorkerCount, config.WorkerQueueSize, config.JobAttempts, config.JobRetryDelay)
	defer jobs.Shutdown()

	vpnAPI := service.NewVpnAPI(time.Duration(cfg.VpnRequestTimeout) * time.Second)
	audit := telegram.NewAuditLogger(cfg)
	userService := service.NewUserService(store, jobs, vpnAPI, audit)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(config.RateLimitPerMinute),
			middleware.UserLoader(userService),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			// Pre-checkout query handling. Successful payments arrive as
			// messages and are routed by the catch-all text handler.
			if update.PreCheckoutQuery != nil {
				h.HandlePreCheckout(ctx, update.PreCheckoutQuery)
				return
			}
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	if cfg.DropPendingUpdates {
		b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true})
	}

	audit.Attach(b)
	gw := telegram.NewBotGateway(b)

	invoiceService := service.NewInvoiceService(store, gw)
	paymentService := service.NewPaymentService(store, gw, jobs, vpnAPI, audit)
	subscriptionService := service.NewSubscriptionService(store, jobs, vpnAPI)
	sweeper := service.NewSweeper(store, gw, jobs, vpnAPI, audit)

	h = handler.New(handler.Deps{
		Bot:                 b,
		Cfg:                 cfg,
		UserService:         userService,
		InvoiceService:      invoiceService,
		PaymentService:      paymentService,
		SubscriptionService: subscriptionService,
		Store:               store,
		Pool:                jobs,
		Audit:               audit,
	})
	h.Register()

	// Expiry sweep loop
	go sweeper.Start(ctx, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)

	// Admin API
	api := httpapi.NewServer(store, userService, sweeper, cfg.APIToken)
	go func() {
		slog.Info("starting admin api", "addr", cfg.APIListenAddr)
		if err := api.ListenAndServe(ctx, cfg.APIListenAddr); err != nil {
			slog.Error("admin api stopped", "error", err)
		}
	}()

	slog.Info("starting bot")
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}
