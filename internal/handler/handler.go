package handler

import (
	"context"
	"strings"
	"time"

	"dochazka-bot/internal/clock"
	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	bot      telegram.Sender
	services *service.Services
	logger   *logrus.Logger
}

func NewHandler(bot telegram.Sender, services *service.Services, logger *logrus.Logger) *Handler {
	return &Handler{
		bot:      bot,
		services: services,
		logger:   logger,
	}
}

// request carries one incoming message through the command handlers.
type request struct {
	ctx     context.Context
	message *tgbotapi.Message
	chatID  int64
	args    string
	user    *models.User
	log     *logrus.Entry
}

// HandleUpdates processes updates until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update. Panics in a command are logged and swallowed
// so one bad message cannot stop the bot.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	log := h.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"update_id":  update.UpdateID,
	})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Update handler panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery, log)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	h.handleMessage(ctx, update.Message, log)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message, log *logrus.Entry) {
	r := &request{
		ctx:     ctx,
		message: message,
		chatID:  message.Chat.ID,
		log:     log.WithField("chat_id", message.Chat.ID),
	}

	if !message.IsCommand() {
		h.reply(r, "Neznám tenhle příkaz. Seznam příkazů: /help")
		return
	}
	// arguments are not logged, /login carries a password
	r.log = r.log.WithField("command", message.Command())
	r.log.Info("Command received")
	r.args = strings.TrimSpace(message.CommandArguments())

	user, err := h.services.Users.GetByChatID(ctx, r.chatID)
	if err != nil {
		h.replyError(r, err)
		return
	}
	r.user = user
	if user != nil {
		r.log = r.log.WithField("user_id", user.ID)
	}

	h.handleCommand(r)
}

// requireUser answers with a login hint when the chat is not linked to an account.
func (h *Handler) requireUser(r *request) bool {
	if r.user != nil {
		return true
	}
	h.reply(r, "🔑 Nejdřív se přihlas: /login <jméno> <heslo>")
	return false
}

func (h *Handler) requireAdmin(r *request) bool {
	if !h.requireUser(r) {
		return false
	}
	if !r.user.IsAdmin() {
		h.reply(r, "⛔ Tenhle příkaz je jen pro administrátory.")
		return false
	}
	return true
}

func (h *Handler) today() string {
	return clock.Today(h.services.Clock)
}

func (h *Handler) reply(r *request, text string) {
	h.send(r.log, tgbotapi.NewMessage(r.chatID, text))
}

func (h *Handler) send(log *logrus.Entry, c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.WithError(err).Warn("Failed to send message")
	}
}

// replyError shows user-correctable errors and hides storage failures behind a generic text.
func (h *Handler) replyError(r *request, err error) {
	if service.IsUserError(err) {
		r.log.WithError(err).Warn("Command rejected")
		h.reply(r, "❌ "+userMessage(err))
		return
	}
	r.log.WithError(err).Error("Command failed")
	h.reply(r, "⚠️ Něco se pokazilo, zkus to prosím později.")
}
