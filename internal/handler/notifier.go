package handler

import (
	"context"
	"fmt"

	"dochazka-bot/internal/models"
	"dochazka-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers absence decisions to the requester's Telegram chat.
type Notifier struct {
	bot telegram.Sender
}

func NewNotifier(bot telegram.Sender) *Notifier {
	return &Notifier{bot: bot}
}

func (n *Notifier) NotifyAbsenceDecision(ctx context.Context, user *models.User, absence *models.AbsenceRequest) error {
	if user.ChatID == nil {
		return fmt.Errorf("user %d has no linked chat", user.ID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("📬 Rozhodnutí o žádosti:\n%s", formatAbsence(absence))
	if _, err := n.bot.Send(tgbotapi.NewMessage(*user.ChatID, text)); err != nil {
		return fmt.Errorf("send decision to chat %d: %w", *user.ChatID, err)
	}
	return nil
}
