// Package bot is the Telegram command surface over the rewards core. Every
// command is single-shot with arguments; there is no per-chat wizard state
// held in process memory.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pointsbot/internal/config"
	"pointsbot/internal/rewards"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	rewards *rewards.Service
	config  *config.Config
}

func New(cfg *config.Config, rewardsService *rewards.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}

	slog.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:     api,
		rewards: rewardsService,
		config:  cfg,
	}, nil
}

// Run long-polls updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("error sending telegram message", "chat_id", chatID, "error", err)
	}
}
