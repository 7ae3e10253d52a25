package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pointsbot/internal/models"
	"pointsbot/internal/rewards"
)

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(msg.Chat.ID, userID, username)
		case "balance":
			b.handleBalance(msg.Chat.ID, userID, username)
		case "history":
			b.handleHistory(msg.Chat.ID, userID, username)
		case "checkin":
			b.handleCheckin(msg.Chat.ID, userID, username)
		case "ad":
			b.handleAd(msg.Chat.ID, userID, username)
		case "keys":
			b.handleKeys(msg.Chat.ID)
		case "rotatekeys":
			b.handleRotateKeys(msg.Chat.ID, userID)
		case "setlink":
			b.handleSetLink(msg.Chat.ID, userID, msg.CommandArguments())
		default:
			b.reply(msg.Chat.ID, "Unknown command. Try /balance, /checkin, /ad or /keys.")
		}
		return
	}

	// Bare text is treated as a daily-key submission.
	if text := strings.TrimSpace(msg.Text); text != "" {
		b.handleClaim(msg.Chat.ID, userID, username, text)
	}
}

func (b *Bot) handleStart(chatID, userID int64, username string) {
	if _, err := b.rewards.GetUser(userID, username); err != nil {
		slog.Error("error registering user", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, "Welcome! Earn points with /checkin, /ad and the daily keys. Check /balance anytime.")
}

func (b *Bot) handleBalance(chatID, userID int64, username string) {
	u, err := b.rewards.GetUser(userID, username)
	if err != nil {
		slog.Error("error loading balance", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Balance: %d points (lifetime earned: %d).", u.Balance, u.TotalEarned))
}

func (b *Bot) handleHistory(chatID, userID int64, username string) {
	if _, err := b.rewards.GetUser(userID, username); err != nil {
		slog.Error("error loading user", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}

	entries, err := b.rewards.History(userID, 10)
	if err != nil {
		slog.Error("error loading history", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "No points activity yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent activity:\n")
	for _, e := range entries {
		sign := "+"
		if e.Action == models.LedgerActionSpend {
			sign = "-"
		}
		fmt.Fprintf(&sb, "%s%d  %s\n", sign, e.Amount, e.Description)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) handleCheckin(chatID, userID int64, username string) {
	res, err := b.rewards.CheckIn(userID, username)
	if err != nil {
		if !rewards.IsRecoverable(err) {
			slog.Error("error checking in", "user_id", userID, "error", err)
		}
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, res.Message)
}

func (b *Bot) handleAd(chatID, userID int64, username string) {
	token, err := b.rewards.IssueAdToken(userID, username)
	if err != nil {
		slog.Error("error issuing ad token", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, "Watch the ad, then open this link within 5 minutes to collect your reward:\n"+b.config.VerifyURL(token))
}

func (b *Bot) handleKeys(chatID int64) {
	pair, err := b.rewards.CurrentKeys()
	if err != nil {
		if !rewards.IsRecoverable(err) {
			slog.Error("error loading keys", "error", err)
		}
		b.reply(chatID, rewards.UserMessage(err))
		return
	}

	// Readiness is judged on this snapshot, not a second query: a link set
	// concurrently must not leave us dereferencing a pair fetched before it.
	text, ok := keysReply(pair)
	if !ok {
		b.reply(chatID, rewards.UserMessage(rewards.ErrKeysNotReady))
		return
	}
	b.reply(chatID, text)
}

func keysReply(pair *models.DailyKeyPair) (string, bool) {
	if pair.Key1Link == nil || *pair.Key1Link == "" || pair.Key2Link == nil || *pair.Key2Link == "" {
		return "", false
	}
	return fmt.Sprintf(
		"Today's keys are hidden behind these links. Send a key back here to redeem it.\nKey 1: %s\nKey 2: %s",
		*pair.Key1Link, *pair.Key2Link,
	), true
}

func (b *Bot) handleClaim(chatID, userID int64, username, submitted string) {
	res, err := b.rewards.ClaimKey(userID, username, submitted)
	if err != nil {
		if !rewards.IsRecoverable(err) {
			slog.Error("error claiming key", "user_id", userID, "error", err)
		}
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, res.Message)
}

func (b *Bot) handleRotateKeys(chatID, userID int64) {
	if !b.config.IsAdmin(userID) {
		b.reply(chatID, "This command is for admins only.")
		return
	}

	pair, err := b.rewards.RotateKeys()
	if err != nil {
		slog.Error("error rotating keys", "user_id", userID, "error", err)
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Keys rotated.\nKey 1: %s\nKey 2: %s\nSet the links with /setlink key1 <url> and /setlink key2 <url>.", pair.Key1, pair.Key2))
}

func (b *Bot) handleSetLink(chatID, userID int64, args string) {
	if !b.config.IsAdmin(userID) {
		b.reply(chatID, "This command is for admins only.")
		return
	}

	fields := strings.Fields(args)
	if len(fields) != 2 || (fields[0] != "key1" && fields[0] != "key2") {
		b.reply(chatID, "Usage: /setlink key1|key2 <url>")
		return
	}

	if err := b.rewards.SetKeyLink(fields[0], fields[1]); err != nil {
		if !rewards.IsRecoverable(err) {
			slog.Error("error setting key link", "user_id", userID, "error", err)
		}
		b.reply(chatID, rewards.UserMessage(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Link for %s saved.", fields[0]))
}
