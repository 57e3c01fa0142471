package handler

import (
	"strconv"
	"strings"
)

// showMonth sends the monthly report, the current month when no argument is given.
func (h *Handler) showMonth(r *request) {
	if !h.requireUser(r) {
		return
	}

	now := h.services.Clock.Now()
	year, month := now.Year(), now.Month()
	if r.args != "" {
		var err error
		if year, month, err = parseMonth(r.args); err != nil {
			h.replyError(r, err)
			return
		}
	}

	summary, err := h.services.Monthly.MonthSummary(r.ctx, r.user, year, month)
	if err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, formatMonth(summary, h.services.Clock.Location()))
}

func (h *Handler) showLeave(r *request) {
	if !h.requireUser(r) {
		return
	}

	year := h.services.Clock.Now().Year()
	if r.args != "" {
		y, err := strconv.Atoi(strings.TrimSpace(r.args))
		if err != nil || y < 2000 || y > 2100 {
			h.reply(r, "Použití: /leave [RRRR]")
			return
		}
		year = y
	}

	summary, err := h.services.Leave.LeaveSummary(r.ctx, r.user.ID, year)
	if err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, formatLeave(summary))
}
