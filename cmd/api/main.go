package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	messagesActor "chat-stats-service/internal/messages/adapters/actor"
	messagesHttp "chat-stats-service/internal/messages/adapters/http/fiber"
	messagesKv "chat-stats-service/internal/messages/adapters/kv"
	messagesRepoPg "chat-stats-service/internal/messages/adapters/postgres"
	messagesUsecase "chat-stats-service/internal/messages/core/usecase"

	reportsHttp "chat-stats-service/internal/reports/adapters/http/fiber"
	reportsKv "chat-stats-service/internal/reports/adapters/kv"
	reportsRepoPg "chat-stats-service/internal/reports/adapters/postgres"
	reportsUsecase "chat-stats-service/internal/reports/core/usecase"

	summaryHttp "chat-stats-service/internal/summary/adapters/http/fiber"
	summaryKv "chat-stats-service/internal/summary/adapters/kv"
	summaryUniai "chat-stats-service/internal/summary/adapters/uniai"
	summaryUsecase "chat-stats-service/internal/summary/core/usecase"

	"chat-stats-service/internal/batch"
	"chat-stats-service/internal/counters"
	"chat-stats-service/internal/kvscan"
	"chat-stats-service/internal/kvstore"
	"chat-stats-service/internal/summary/core/ports"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "chat-stats-service/docs"
)

func loadConfig() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("kv.dir", "./data/kv")
	viper.SetDefault("batch.size", 10)
	viper.SetDefault("batch.delay", 0)
	viper.SetDefault("counters.shards", 32)
	viper.SetDefault("counters.mailbox_size", 256)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.endpoint", "https://api.openai.com")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.request_timeout", 90*time.Second)
	viper.SetDefault("llm.max_tokens", 512)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("bot.handle", "")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Config
	loadConfig()
	dsn := viper.GetString("postgres.dsn")
	if dsn == "" {
		logger.Error("POSTGRES_DSN is not set")
		os.Exit(1)
	}

	// DB connection
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open postgres", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping postgres", "err", err)
		os.Exit(1)
	}

	// KV store
	store, err := kvstore.OpenPebble(viper.GetString("kv.dir"))
	if err != nil {
		logger.Error("failed to open kv store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	scanner := kvscan.New(store)
	executor := batch.NewExecutor(batch.Config{
		BatchSize: viper.GetInt("batch.size"),
		Delay:     viper.GetDuration("batch.delay"),
	}, logger)

	// Counter dispatcher: the single writer for every counter key.
	dispatcher := counters.NewDispatcher(store, logger, counters.Options{
		Shards:      viper.GetInt("counters.shards"),
		MailboxSize: viper.GetInt("counters.mailbox_size"),
	})
	defer dispatcher.Close()

	// Adapter-level DB wrappers
	messagesDB := messagesRepoPg.NewSQLDB(db)
	reportsDB := reportsRepoPg.NewSQLDB(db)

	// Repositories
	messageRepository := messagesKv.NewRepository(store, scanner, executor, logger)
	dailyCountsRepository := messagesRepoPg.NewDailyCountsRepository(messagesDB)
	statsRepository := reportsRepoPg.NewStatsRepository(reportsDB)
	scanSource := reportsKv.NewScanSource(store, scanner, executor, logger)
	resetStore := reportsKv.NewResetStore(store, scanner)

	// Usecases
	ingestUC := messagesUsecase.NewIngestMessageUseCase(
		messageRepository,
		messagesActor.NewCounterAdapter(dispatcher),
		dailyCountsRepository,
		logger,
	)
	reportUC := reportsUsecase.NewGetReportUseCase(
		reportsUsecase.NewFallbackSource(statsRepository, scanSource, logger),
		scanSource,
		scanSource,
		logger,
	)
	resetUC := reportsUsecase.NewResetChatUseCase(resetStore, resetStore, statsRepository, logger)
	summaryUC := summaryUsecase.NewSummarizeChatUseCase(
		summaryKv.NewMessageSource(messageRepository),
		summaryUniai.NewSummarizer(summaryUniai.Config{
			Provider:       viper.GetString("llm.provider"),
			Endpoint:       viper.GetString("llm.endpoint"),
			APIKey:         viper.GetString("llm.api_key"),
			Model:          viper.GetString("llm.model"),
			RequestTimeout: viper.GetDuration("llm.request_timeout"),
		}),
		summaryUsecase.Config{
			BotHandle: viper.GetString("bot.handle"),
			Options: ports.SummarizeOptions{
				MaxTokens:   viper.GetInt("llm.max_tokens"),
				Temperature: viper.GetFloat64("llm.temperature"),
			},
		},
		logger,
	)

	// HTTP (Fiber) app + handlers
	app := fiber.New()

	// messages endpoints
	messagesHandler := messagesHttp.NewMessageHandler(ingestUC)
	app.Post("/messages", messagesHandler.IngestMessage)
	app.Post("/messages/bulk", messagesHandler.BulkIngestMessages)

	// reports endpoints
	reportsHandler := reportsHttp.NewReportHandler(reportUC, resetUC)
	app.Get("/chats/:chat_id/activity", reportsHandler.GetActivity)
	app.Get("/chats/:chat_id/leaderboard", reportsHandler.GetLeaderboard)
	app.Get("/chats/:chat_id/words", reportsHandler.GetTopWords)
	app.Delete("/chats/:chat_id", reportsHandler.ResetChat)

	// summary endpoint
	summaryHandler := summaryHttp.NewSummaryHandler(summaryUC)
	app.Post("/chats/:chat_id/summary", summaryHandler.Summarize)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	addr := viper.GetString("server.addr")
	go func() {
		if err := app.Listen(addr); err != nil {
			logger.Error("fiber stopped", "err", err)
		}
	}()

	logger.Info("server started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("fiber shutdown error", "err", err)
	}

	logger.Info("server exiting")
}
