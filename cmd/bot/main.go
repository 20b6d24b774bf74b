package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-telegram/bot"

	orderboard "github.com/set-night/orderboard"
	"github.com/set-night/orderboard/internal/archive"
	"github.com/set-night/orderboard/internal/config"
	"github.com/set-night/orderboard/internal/handler"
	"github.com/set-night/orderboard/internal/httpapi"
	"github.com/set-night/orderboard/internal/middleware"
	"github.com/set-night/orderboard/internal/repository"
	"github.com/set-night/orderboard/internal/service"
	"github.com/set-night/orderboard/internal/telegram"
)

func main() {
	// Setup structured logging; the level is applied once the config is loaded
	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(logLevel(cfg.LogLevel))

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open storage
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err, "driver", cfg.StorageDriver)
		os.Exit(1)
	}
	defer closeStore()

	// Optional archive upload
	var sink service.ArchiveSink
	if cfg.ArchiveBucket != "" {
		s3Sink, err := archive.NewS3Sink(ctx, archive.Options{
			Bucket:    cfg.ArchiveBucket,
			Prefix:    cfg.ArchivePrefix,
			Region:    cfg.ArchiveRegion,
			Endpoint:  cfg.ArchiveEndpoint,
			AccessKey: cfg.ArchiveAccessKey,
			SecretKey: cfg.ArchiveSecretKey,
		})
		if err != nil {
			slog.Error("failed to configure archive upload", "error", err)
			os.Exit(1)
		}
		sink = s3Sink
	}

	// Initialize services
	catalogService := service.NewCatalogService(store)
	ledgerService := service.NewLedgerService(store)
	workflowService := service.NewWorkflowService(store)
	memberService := service.NewMemberService(store)

	// Set once the bot exists; the recover middleware reports through it
	var tgLogger *telegram.TelegramLogger

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(func(err error, where string) {
				if tgLogger != nil {
					tgLogger.LogError(err, where)
				}
			}),
			middleware.Logging(),
			middleware.RateLimit(middleware.NewChatLimiter(config.RateLimitPerMinute, config.RateLimitWindow)),
			middleware.MemberLoader(memberService, cfg),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	tgLogger = telegram.NewTelegramLogger(b, cfg)
	notifier := telegram.NewNotifier(b, cfg)

	resetService := service.NewResetService(store, service.Schedule{
		Location:      loc,
		WeeklyWeekday: time.Weekday(cfg.WeeklyResetWeekday),
		WeeklyHour:    cfg.WeeklyResetHour,
		WeeklyMinute:  cfg.WeeklyResetMinute,
		MonthlyHour:   cfg.MonthlyResetHour,
		MonthlyMinute: cfg.MonthlyResetMinute,
	}, notifier, sink, tgLogger)

	community := service.NewCommunity(service.CommunityDeps{
		Catalog:       catalogService,
		Workflow:      workflowService,
		Members:       memberService,
		Resets:        resetService,
		Notifier:      notifier,
		Events:        tgLogger,
		NotifyTimeout: config.NotifyTimeout,
	})

	// Initialize handler
	h := handler.New(handler.Deps{
		Bot:       b,
		Cfg:       cfg,
		Community: community,
		Catalog:   catalogService,
		Ledger:    ledgerService,
		Workflow:  workflowService,
		Resets:    resetService,
		TgLogger:  tgLogger,
	})

	// Register all handlers
	h.Register()

	// Board message ids are not persisted, so every board is posted afresh
	if err := community.PublishAll(ctx); err != nil {
		slog.Warn("initial publish incomplete", "error", err)
	}

	// Reset scheduler: catches up missed boundaries, then checks every interval
	go resetService.Run(ctx, config.ResetCheckInterval)

	// Read-only HTTP API
	if cfg.HTTPEnabled {
		api := httpapi.New(httpapi.Deps{
			Catalog:  catalogService,
			Ledger:   ledgerService,
			Members:  memberService,
			Workflow: workflowService,
			Resets:   resetService,
		})
		go func() {
			if err := api.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port)); err != nil {
				slog.Error("http api stopped", "error", err)
			}
		}()
	}

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID, "timezone", loc.String())
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverFile:
		store, err := repository.OpenFileStore(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using file storage", "path", cfg.DataFile)
		return store, func() {}, nil

	default:
		migrations, err := fs.Sub(orderboard.MigrationsFS, "migrations")
		if err != nil {
			return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
		}
		store, pool, err := repository.OpenPgStore(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns:        config.DBMaxConns,
			MinConns:        config.DBMinConns,
			MaxConnIdleTime: config.DBMaxConnIdleTime,
		}, migrations)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using postgres storage")
		return store, pool.Close, nil
	}
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
