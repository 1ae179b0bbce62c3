package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/api"
	"github.com/paisabot/paisabot/internal/channels/telegram"
	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/config"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/lexicon"
	"github.com/paisabot/paisabot/internal/metrics"
	"github.com/paisabot/paisabot/internal/schedule"
)

// App holds the wired-together pieces of paisabot.
type App struct {
	Config      *config.Config
	Store       *ledger.Store
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Service     *chat.Service
	TelegramBot *telegram.Bot
	Scheduler   *schedule.Scheduler
	Version     string
}

// New wires the chat service on top of the given config and store.
func New(cfg *config.Config, store *ledger.Store, logger *zap.Logger, version string) *App {
	m := metrics.Default()
	router := chat.NewRouter(lexicon.Default(), cfg.Currency, logger)

	if err := store.SeedVocabularies(cfg.Vocabularies); err != nil {
		logger.Warn("failed to seed vocabularies", zap.Error(err))
	}

	return &App{
		Config:  cfg,
		Store:   store,
		Logger:  logger,
		Metrics: m,
		Service: chat.NewService(store, router, m, logger),
		Version: version,
	}
}

// RunServe starts the HTTP API plus any configured channels and blocks
// until SIGINT or SIGTERM.
func (app *App) RunServe() {
	if app.Config.Channels.Telegram.Enabled {
		bot, err := telegram.NewBot(app.Config.Channels.Telegram, app.Service, app.Logger)
		if err != nil {
			app.Logger.Error("failed to create telegram bot", zap.Error(err))
		} else if err := bot.Start(); err != nil {
			app.Logger.Error("failed to start telegram bot", zap.Error(err))
		} else {
			app.TelegramBot = bot
			app.Logger.Info("telegram bot started")
		}
	}

	if app.Config.Schedule.Enabled {
		var notifier schedule.Notifier = noopNotifier{}
		if app.TelegramBot != nil && app.TelegramBot.Enabled() {
			notifier = app.TelegramBot
		}

		sched, err := schedule.New(app.Config.Schedule.DailySummaryCron, app.Store, notifier, app.Config.Currency, app.Logger)
		if err != nil {
			app.Logger.Error("failed to create scheduler", zap.Error(err))
		} else {
			sched.Start()
			app.Scheduler = sched
		}
	}

	server := api.New(app.Config, app.Store, app.Service, app.Metrics, app.Logger)
	go func() {
		if err := server.Listen(); err != nil {
			app.Logger.Fatal("server error", zap.Error(err))
		}
	}()

	app.Logger.Info("paisabot started",
		zap.String("version", app.Version),
		zap.String("address", app.Config.Server.Address),
		zap.Int("port", app.Config.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("shutting down")

	if app.TelegramBot != nil {
		app.TelegramBot.Stop()
	}
	if app.Scheduler != nil {
		app.Scheduler.Stop()
	}
	if err := server.Shutdown(); err != nil {
		app.Logger.Error("server shutdown error", zap.Error(err))
	}
}

// RunChat handles one message, or drops into the interactive loop when
// message is empty.
func (app *App) RunChat(message string) {
	ctx := context.Background()

	if message != "" {
		resp, err := app.Service.HandleMessage(ctx, message)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(resp.Text)
		return
	}

	app.interactive(ctx)
}

func (app *App) interactive(ctx context.Context) {
	fmt.Println("paisabot - tell me what you spent, or ask for a summary")
	fmt.Println("Type 'exit' to quit, 'help' for examples")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			return
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
			continue
		}

		resp, err := app.Service.HandleMessage(ctx, input)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		fmt.Println(resp.Text)
		fmt.Println()
	}
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(string) error { return nil }
