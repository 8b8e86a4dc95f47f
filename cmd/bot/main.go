package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"deal_followup_bot/internal/app"
	"deal_followup_bot/internal/domain/timeline"
	"deal_followup_bot/internal/infra/config"
	idb "deal_followup_bot/internal/infra/database"
	"deal_followup_bot/internal/infra/logger"
	"deal_followup_bot/internal/infra/scheduler"
	"deal_followup_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithField("managers", len(cfg.ManagerTelegramIDs)).Info("Deal follow-up bot starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare database schema")
	}
	mainLogger.Info("Database connection established")

	dealRepo := idb.NewPostgresDealRepository(db)
	sourceRepo := idb.NewPostgresSourceRepository(db)
	prefRepo := idb.NewPostgresPreferenceRepository(db)

	formatAmount, err := timeline.NewAmountFormatter(cfg.CurrencyLocale, cfg.CurrencySuffix)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid currency settings")
	}
	rule := timeline.Rule{
		PaymentLeadDays: cfg.PaymentLeadDays,
		PolicyLeadDays:  cfg.PolicyLeadDays,
	}

	dealService := app.NewDealService(dealRepo, sourceRepo, prefRepo, timeline.NewBuilder(formatAmount), rule, cfg.ManagerTelegramIDs, cfg.DealsPageSize)

	workflowLogger := logger.Component("workflow")
	sessions := app.NewSessionManager(func(chatID int64) *app.Session {
		sessionLogger := workflowLogger.WithField("chat_id", chatID)
		return &app.Session{
			Delay:  app.NewDelayWorkflow(dealRepo, rule, sessionLogger),
			Editor: app.NewDateEditor(dealRepo, dealRepo, chatID, sessionLogger),
		}
	})

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Unhandled bot error")
		},
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	telegram.NewHandlers(ctx, dealService, sessions, formatAmount, logger.Component("telegram")).Register(bot)
	mainLogger.Info("Bot handlers registered")

	sweeper := scheduler.NewSessionSweeper(sessions, telegram.NewTelebotAdapter(bot), logger.Component("scheduler"), cfg.CronSpecSessionSweep, cfg.SessionTTL)
	if err := sweeper.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start session sweeper")
	}

	go bot.Start()
	mainLogger.Info("Bot and session sweeper are running")

	<-ctx.Done()

	mainLogger.Info("Shutting down...")
	bot.Stop()
	sweeper.Stop()
	mainLogger.Info("Shut down gracefully")
}
