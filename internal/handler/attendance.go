package handler

import (
	"fmt"
	"strings"

	"dochazka-bot/internal/models"
	"dochazka-bot/pkg/timefmt"
)

// pauseAliases maps what people type after /pause to a category.
var pauseAliases = map[string]models.PauseCategory{
	"":          models.PauseLunch,
	"obed":      models.PauseLunch,
	"oběd":      models.PauseLunch,
	"lunch":     models.PauseLunch,
	"prestavka": models.PauseBreak,
	"přestávka": models.PauseBreak,
	"break":     models.PauseBreak,
	"jine":      models.PauseOther,
	"jiné":      models.PauseOther,
	"other":     models.PauseOther,
}

// absentToday blocks attendance actions on a day covered by an approved absence.
func (h *Handler) absentToday(r *request) bool {
	absent, err := h.services.Absences.HasApprovedAbsenceOn(r.ctx, r.user.ID, h.today())
	if err != nil {
		h.replyError(r, err)
		return true
	}
	if absent {
		h.reply(r, "🏖 Na dnešek máš schválenou nepřítomnost, docházka se nezapisuje.")
		return true
	}
	return false
}

func (h *Handler) checkIn(r *request) {
	if !h.requireUser(r) || h.absentToday(r) {
		return
	}

	res, err := h.services.Attendance.CheckIn(r.ctx, r.user)
	if err != nil {
		h.replyError(r, err)
		return
	}

	loc := h.services.Clock.Location()
	if res.Reentry {
		now := h.services.Clock.Now()
		h.reply(r, fmt.Sprintf("🔁 Vítej zpátky! Čas mimo pracoviště do %s se počítá jako neplacená pauza.",
			formatClock(&now, loc)))
		return
	}
	h.reply(r, fmt.Sprintf("✅ Příchod zapsán v %s. Hezký den!", formatClock(res.Day.CheckIn, loc)))
}

func (h *Handler) checkOut(r *request) {
	if !h.requireUser(r) {
		return
	}

	day, err := h.services.Attendance.CheckOut(r.ctx, r.user)
	if err != nil {
		h.replyError(r, err)
		return
	}

	report, err := h.services.Attendance.Today(r.ctx, r.user.ID)
	if err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, fmt.Sprintf("👋 Odchod zapsán v %s.\n⏱ Dnes odpracováno %s.",
		formatClock(day.CheckOut, h.services.Clock.Location()),
		timefmt.SecondsToHuman(report.WorkedSeconds)))
}

func (h *Handler) startPause(r *request) {
	if !h.requireUser(r) || h.absentToday(r) {
		return
	}

	category, ok := pauseAliases[strings.ToLower(r.args)]
	if !ok {
		h.reply(r, "❌ Neznámý druh pauzy. Použij /pause oběd, /pause přestávka nebo /pause jiné. Lékař: /doctor")
		return
	}
	h.openPause(r, category, false)
}

func (h *Handler) startDoctorVisit(r *request) {
	if !h.requireUser(r) || h.absentToday(r) {
		return
	}
	h.openPause(r, models.PauseDoctor, true)
}

func (h *Handler) openPause(r *request, category models.PauseCategory, paid bool) {
	pause, err := h.services.Attendance.StartPause(r.ctx, r.user, category, paid)
	if err != nil {
		h.replyError(r, err)
		return
	}

	text := fmt.Sprintf("⏸ %s od %s. Až se vrátíš: /resume", category.Label(),
		formatClock(&pause.StartedAt, h.services.Clock.Location()))
	if paid {
		text += "\n💼 Tahle pauza se počítá do odpracované doby."
	}
	h.reply(r, text)
}

func (h *Handler) resumeWork(r *request) {
	if !h.requireUser(r) {
		return
	}

	pause, err := h.services.Attendance.ResumeWork(r.ctx, r.user)
	if err != nil {
		h.replyError(r, err)
		return
	}

	took := int64(pause.EndedAt.Sub(pause.StartedAt).Seconds())
	h.reply(r, fmt.Sprintf("▶️ Zpátky v práci. %s trvala %s.", pause.Category.Label(), timefmt.SecondsToHuman(took)))
}

func (h *Handler) showToday(r *request) {
	if !h.requireUser(r) {
		return
	}

	report, err := h.services.Attendance.Today(r.ctx, r.user.ID)
	if err != nil {
		h.replyError(r, err)
		return
	}

	text := formatDay(report, h.services.Clock.Location())
	if absence, err := h.services.Absences.AbsenceOn(r.ctx, r.user.ID, report.Date); err == nil && absence != nil {
		text += "\n\n" + formatAbsence(absence)
	}
	h.reply(r, text)
}
