package handler

import (
	"fmt"
	"strings"

	"dochazka-bot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// login links the chat to an account. The message carrying the password is deleted afterwards.
func (h *Handler) login(r *request) {
	defer h.deleteMessage(r)

	parts := strings.Fields(r.args)
	if len(parts) != 2 {
		h.reply(r, "🔑 Použití: /login jméno heslo")
		return
	}

	user, err := h.services.Users.Authenticate(r.ctx, parts[0], parts[1])
	if err != nil {
		h.replyError(r, err)
		return
	}
	if _, err := h.services.Users.LinkChat(r.ctx, user.ID, r.chatID); err != nil {
		h.replyError(r, err)
		return
	}

	r.log.WithField("user_id", user.ID).Info("User logged in")
	h.reply(r, fmt.Sprintf("👋 Ahoj, %s! Chat je propojený s účtem %s.\nPříkazy: /help", user.DisplayName, user.Username))
}

func (h *Handler) showProfile(r *request) {
	if !h.requireUser(r) {
		return
	}

	u := r.user
	h.reply(r, fmt.Sprintf(`👤 %s
Účet: %s
Role: %s
Barva: %s`, u.DisplayName, u.Username, roleLabel(u.Role), u.Color))
}

func (h *Handler) changePassword(r *request) {
	defer h.deleteMessage(r)
	if !h.requireUser(r) {
		return
	}
	if r.args == "" || strings.ContainsAny(r.args, " \t") {
		h.reply(r, "🔑 Použití: /passwd nové_heslo")
		return
	}

	if err := h.services.Users.ChangePassword(r.ctx, r.user, r.user.ID, r.args); err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, "✅ Heslo změněno.")
}

func (h *Handler) deleteMessage(r *request) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(r.chatID, r.message.MessageID)); err != nil {
		r.log.WithError(err).Warn("Failed to delete message with credentials")
	}
}

func roleLabel(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "administrátor"
	case models.RoleTempWorker:
		return "brigádník"
	}
	return "zaměstnanec"
}
