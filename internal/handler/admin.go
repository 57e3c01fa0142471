package handler

import (
	"context"
	"fmt"
	"strings"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/timefmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	callbackApprove = "abs:approve:"
	callbackReject  = "abs:reject:"
)

var presenceIcons = map[service.Presence]string{
	service.PresenceWorking: "🟢",
	service.PresencePause:   "⏸",
	service.PresenceDone:    "🏁",
	service.PresenceOffline: "⚪",
	service.PresenceAbsent:  "🏖",
}

func (h *Handler) showStatus(r *request) {
	if !h.requireAdmin(r) {
		return
	}

	statuses, err := h.services.Status.Overview(r.ctx, h.today())
	if err != nil {
		h.replyError(r, err)
		return
	}

	loc := h.services.Clock.Location()
	lines := []string{"👥 Dnes " + formatDate(h.today()) + ":"}
	for _, st := range statuses {
		line := fmt.Sprintf("%s %s", presenceIcons[st.Presence], st.DisplayName)
		if st.CheckIn != nil {
			line += fmt.Sprintf(" (od %s, %s)", formatClock(st.CheckIn, loc), timefmt.SecondsToHuman(st.WorkedSeconds))
		}
		if st.Detail != "" {
			line += " · " + st.Detail
		}
		lines = append(lines, line)
	}
	h.reply(r, strings.Join(lines, "\n"))
}

func (h *Handler) showPending(r *request) {
	if !h.requireAdmin(r) {
		return
	}

	pending, err := h.services.Absences.ListPending(r.ctx, r.user)
	if err != nil {
		h.replyError(r, err)
		return
	}
	if len(pending) == 0 {
		h.reply(r, "✅ Nic nečeká na schválení.")
		return
	}

	for i := range pending {
		h.send(r.log, decisionMessage(r.chatID, &pending[i]))
	}
}

// notifyAdmins offers a new request to every admin with a linked chat.
func (h *Handler) notifyAdmins(r *request, absence *models.AbsenceRequest) {
	users, err := h.services.Users.ListActive(r.ctx)
	if err != nil {
		r.log.WithError(err).Warn("Failed to list admins for notification")
		return
	}
	for i := range users {
		if users[i].IsAdmin() && users[i].ChatID != nil && *users[i].ChatID != r.chatID {
			h.send(r.log, decisionMessage(*users[i].ChatID, absence))
		}
	}
}

func decisionMessage(chatID int64, absence *models.AbsenceRequest) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📨 %s\n%s", absence.User.DisplayName, formatAbsence(absence)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Schválit", fmt.Sprintf("%s%d", callbackApprove, absence.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Zamítnout", fmt.Sprintf("%s%d", callbackReject, absence.ID)),
		),
	)
	return msg
}

// handleCallbackQuery applies an approve or reject button press.
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery, log *logrus.Entry) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	log = log.WithFields(logrus.Fields{"chat_id": chatID, "callback": callback.Data})

	answer := func(text string) {
		if _, err := h.bot.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
			log.WithError(err).Warn("Failed to answer callback")
		}
	}

	var approve bool
	var idPart string
	switch {
	case strings.HasPrefix(callback.Data, callbackApprove):
		approve, idPart = true, strings.TrimPrefix(callback.Data, callbackApprove)
	case strings.HasPrefix(callback.Data, callbackReject):
		approve, idPart = false, strings.TrimPrefix(callback.Data, callbackReject)
	default:
		answer("")
		return
	}

	id, err := parseID(idPart)
	if err != nil {
		answer("Neplatná žádost")
		return
	}

	actor, err := h.services.Users.GetByChatID(ctx, chatID)
	if err != nil {
		log.WithError(err).Error("Failed to load user for callback")
		answer("Chyba, zkus to znovu")
		return
	}

	absence, err := h.services.Absences.ApproveAbsence(ctx, actor, id, approve)
	if err != nil {
		if service.IsUserError(err) {
			log.WithError(err).Warn("Decision rejected")
			answer(userMessage(err))
		} else {
			log.WithError(err).Error("Decision failed")
			answer("Chyba, zkus to znovu")
		}
		return
	}

	log.WithFields(logrus.Fields{"absence_id": id, "approved": approve}).Info("Absence decided via Telegram")
	answer(approvalLabel(absence.Approval))

	edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID,
		fmt.Sprintf("%s\n%s", absence.User.DisplayName, formatAbsence(absence)))
	h.send(log, edit)
}
