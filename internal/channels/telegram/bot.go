package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/paisabot/paisabot/internal/chat"
	"github.com/paisabot/paisabot/internal/config"
)

// Bot bridges Telegram chats to the expense chat service.
type Bot struct {
	api     *tgbotapi.BotAPI
	chat    *chat.Service
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	enabled bool

	allowList map[int64]bool

	// One limiter per chat so a flooding chat cannot starve others.
	limiters  map[int64]*rate.Limiter
	limiterMu sync.Mutex
}

// NewBot creates a Telegram bot. A disabled or tokenless config yields an
// inert bot whose Start and Stop are no-ops.
func NewBot(cfg config.TelegramConfig, chatService *chat.Service, logger *zap.Logger) (*Bot, error) {
	if !cfg.Enabled || cfg.BotToken == "" {
		return &Bot{enabled: false}, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	api.Debug = false
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	ctx, cancel := context.WithCancel(context.Background())

	allowList := make(map[int64]bool)
	for _, id := range cfg.AllowList {
		allowList[id] = true
	}

	return &Bot{
		api:       api,
		chat:      chatService,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		enabled:   true,
		allowList: allowList,
		limiters:  make(map[int64]*rate.Limiter),
	}, nil
}

// Enabled reports whether the bot will poll for updates.
func (b *Bot) Enabled() bool {
	return b.enabled
}

// Start begins polling for updates.
func (b *Bot) Start() error {
	if !b.enabled {
		return nil
	}

	b.wg.Add(1)
	go b.run()
	return nil
}

// Stop shuts down polling and waits for the update loop to exit.
func (b *Bot) Stop() {
	if !b.enabled {
		return
	}
	b.cancel()
	b.wg.Wait()
}

func (b *Bot) run() {
	defer b.wg.Done()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-b.ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := b.handleUpdate(update); err != nil {
				b.logger.Error("failed to handle telegram update", zap.Error(err))
			}
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message

	if len(b.allowList) > 0 && !b.allowList[msg.From.ID] {
		return b.sendMessage(msg.Chat.ID, "You are not authorized to use this bot.")
	}

	if !b.limiter(msg.Chat.ID).Allow() {
		return b.sendMessage(msg.Chat.ID, "Slow down a little, I'm still catching up.")
	}

	if msg.IsCommand() {
		return b.handleCommand(msg)
	}
	if msg.Text != "" {
		return b.handleText(msg)
	}
	return nil
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.sendMessage(msg.Chat.ID, "Hi! I track your money. Tell me things like:\n\n"+
			"• Dinner 250\n"+
			"• Paid 800 for Shoes via GPay\n"+
			"• show summary\n"+
			"• chart this week\n"+
			"• undo")
	case "help":
		return b.sendMessage(msg.Chat.ID, "Just type naturally. I understand expenses "+
			"(\"Groceries 1200 via PhonePe\"), summaries (\"summary for today\"), "+
			"category charts (\"chart this week\"), \"biggest expense\" and \"undo\".")
	default:
		return b.sendMessage(msg.Chat.ID, "Unknown command. Use /help to see what I understand.")
	}
}

func (b *Bot) handleText(msg *tgbotapi.Message) error {
	typing := tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)
	b.api.Send(typing)

	ctx, cancel := context.WithTimeout(b.ctx, 30*time.Second)
	defer cancel()

	resp, err := b.chat.HandleMessage(ctx, msg.Text)
	if err != nil {
		b.logger.Error("chat service error", zap.Error(err))
		return b.sendMessage(msg.Chat.ID, "Something went wrong on my end. Please try again.")
	}

	text := resp.Text
	if len(text) > 4096 {
		text = text[:4093] + "..."
	}
	return b.sendMessage(msg.Chat.ID, text)
}

// Broadcast sends text to every chat on the allow list. With no allow
// list there is nowhere safe to push to, so it is a no-op.
func (b *Bot) Broadcast(text string) error {
	if !b.enabled || len(b.allowList) == 0 {
		return nil
	}

	var firstErr error
	for id := range b.allowList {
		if err := b.sendMessage(id, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *Bot) limiter(chatID int64) *rate.Limiter {
	b.limiterMu.Lock()
	defer b.limiterMu.Unlock()

	l, ok := b.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(1), 5)
		b.limiters[chatID] = l
	}
	return l
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return nil
}
