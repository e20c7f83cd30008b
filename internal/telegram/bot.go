package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iconidentify/xcourier/internal/config"
	"github.com/iconidentify/xcourier/internal/domain"
	"github.com/iconidentify/xcourier/internal/repository"
	"github.com/iconidentify/xcourier/internal/stats"
)

const helpText = "Send tweet link here and I will download media in the best available quality for you"

// Counters serves the stats commands.
type Counters interface {
	Snapshot() stats.Snapshot
	Reset(ctx context.Context) error
}

// Bot receives Telegram updates and turns text messages into queued
// jobs. Commands are answered inline; media work happens in the worker
// pool.
type Bot struct {
	api      *tgbotapi.BotAPI
	queue    repository.MessageQueue
	counters Counters
	cfg      config.TelegramConfig
	logger   *slog.Logger
}

// NewBot creates a bot on an authorized client.
func NewBot(
	cfg config.TelegramConfig,
	api *tgbotapi.BotAPI,
	queue repository.MessageQueue,
	counters Counters,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		api:      api,
		queue:    queue,
		counters: counters,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run registers command menus and consumes updates until Stop is called
// or ctx is done.
func (b *Bot) Run(ctx context.Context) {
	b.registerCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", "username", b.api.Self.UserName, "private", b.cfg.Private)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop ends update polling. The library closes the updates channel once
// the in-flight long poll returns, which ends Run.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.ChannelPost != nil && update.ChannelPost.Chat != nil {
		b.leaveChannel(update.ChannelPost.Chat.ID)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	if !b.allowed(msg.Chat.ID) {
		b.logger.Info("rejected message from unlisted chat", "chat_id", msg.Chat.ID)
		b.replyText(msg, fmt.Sprintf("Access denied. Your id (%d) is not whitelisted", msg.Chat.ID))
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Text == "" {
		return
	}

	b.enqueue(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		greeting := fmt.Sprintf("Hi [%s](tg://user?id=%d)!\n%s", msg.From.FirstName, msg.From.ID, helpText)
		reply := tgbotapi.NewMessage(msg.Chat.ID, greeting)
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyToMessageID = msg.MessageID
		b.send(reply)

	case "help":
		b.replyText(msg, helpText)

	case "stats":
		if !b.isDeveloperChat(msg.Chat.ID) {
			return
		}
		snap := b.counters.Snapshot()
		text := fmt.Sprintf("*Bot stats:*\nMessages handled: *%d*\nMedia downloaded: *%d*",
			snap.MessagesHandled, snap.MediaDownloaded)
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyToMessageID = msg.MessageID
		b.send(reply)

	case "resetstats":
		if !b.isDeveloperChat(msg.Chat.ID) {
			return
		}
		if err := b.counters.Reset(ctx); err != nil {
			b.logger.Error("failed to reset stats", "error", err)
			return
		}
		b.replyText(msg, "Bot stats have been reset")
	}
}

func (b *Bot) enqueue(ctx context.Context, msg *tgbotapi.Message) {
	job := domain.NewJob(domain.IncomingMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		UserID:    msg.From.ID,
		Text:      msg.Text,
	})

	if err := b.queue.Enqueue(ctx, job); err != nil {
		b.logger.Error("failed to enqueue message", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	b.logger.Info("message queued", "job_id", job.ID, "chat_id", msg.Chat.ID)
}

// allowed reports whether a chat may use the bot. Everyone may unless
// private mode is on.
func (b *Bot) allowed(chatID int64) bool {
	if !b.cfg.Private {
		return true
	}
	if chatID == b.cfg.DeveloperChatID {
		return true
	}
	for _, id := range b.cfg.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) isDeveloperChat(chatID int64) bool {
	return b.cfg.DeveloperChatID != 0 && chatID == b.cfg.DeveloperChatID
}

// leaveChannel exits a channel the bot was added to. The bot only works
// with direct and group chats.
func (b *Bot) leaveChannel(chatID int64) {
	b.logger.Info("leaving channel", "chat_id", chatID)
	if _, err := b.api.Request(tgbotapi.LeaveChatConfig{ChatID: chatID}); err != nil {
		b.logger.Warn("failed to leave channel", "chat_id", chatID, "error", err)
	}
}

// registerCommands publishes the command menus: the public scope gets
// the user commands (none in private mode), the developer chat
// additionally gets the stats commands.
func (b *Bot) registerCommands() {
	public := []tgbotapi.BotCommand{
		{Command: "start", Description: "Show greeting"},
		{Command: "help", Description: "How to use the bot"},
	}
	if b.cfg.Private {
		public = nil
	}

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(public...)); err != nil {
		b.logger.Warn("failed to register commands", "error", err)
	}

	if b.cfg.DeveloperChatID == 0 {
		return
	}

	developer := append(public,
		tgbotapi.BotCommand{Command: "stats", Description: "Show bot stats"},
		tgbotapi.BotCommand{Command: "resetstats", Description: "Reset bot stats"},
	)
	scope := tgbotapi.NewBotCommandScopeChat(b.cfg.DeveloperChatID)
	if _, err := b.api.Request(tgbotapi.NewSetMyCommandsWithScope(scope, developer...)); err != nil {
		b.logger.Warn("failed to register developer commands", "error", err)
	}
}

func (b *Bot) replyText(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	b.send(reply)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send failed", "error", wrapAPIError(err))
	}
}
