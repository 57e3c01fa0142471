package handler

import (
	"fmt"
	"strconv"
	"strings"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"
)

const maxListedAbsences = 15

func (h *Handler) requestVacation(r *request) {
	if !h.requireUser(r) {
		return
	}

	parts := strings.Fields(r.args)
	if len(parts) == 0 {
		h.reply(r, `🏖 Žádost o dovolenou

/vacation od [do] [půldny...]

Příklady:
/vacation 08.06.2026
/vacation 08.06.2026 12.06.2026
/vacation 08.06.2026 12.06.2026 09.06.2026 11.06.2026
→ 8.–12. června, 9. a 11. jen půlden`)
		return
	}

	dates, err := h.parseDates(parts)
	if err != nil {
		h.replyError(r, err)
		return
	}

	in := service.AbsenceInput{Type: models.AbsenceVacation, From: dates[0]}
	if len(dates) > 1 {
		in.To = dates[1]
		in.HalfDays = dates[2:]
	}
	h.fileAbsence(r, in)
}

func (h *Handler) requestHalfDay(r *request) {
	if !h.requireUser(r) {
		return
	}
	if r.args == "" {
		h.reply(r, "🌗 Použití: /halfday DD.MM.RRRR")
		return
	}

	day, err := parseDate(r.args, h.services.Clock.Now())
	if err != nil {
		h.replyError(r, err)
		return
	}
	h.fileAbsence(r, service.AbsenceInput{Type: models.AbsenceVacationHalf, From: day})
}

func (h *Handler) requestSickday(r *request) {
	if !h.requireUser(r) {
		return
	}

	day := h.today()
	if r.args != "" {
		var err error
		if day, err = parseDate(r.args, h.services.Clock.Now()); err != nil {
			h.replyError(r, err)
			return
		}
	}
	h.fileAbsence(r, service.AbsenceInput{Type: models.AbsenceSickday, From: day})
}

// requestIllness files an illness. Without an end date it stays open until closed.
func (h *Handler) requestIllness(r *request) {
	if !h.requireUser(r) {
		return
	}

	in := service.AbsenceInput{Type: models.AbsenceIllness, From: h.today()}
	if parts := strings.Fields(r.args); len(parts) > 0 {
		if len(parts) > 2 {
			h.reply(r, "🏥 Použití: /illness [od] [do]")
			return
		}
		dates, err := h.parseDates(parts)
		if err != nil {
			h.replyError(r, err)
			return
		}
		in.From = dates[0]
		if len(dates) == 2 {
			in.To = dates[1]
		}
	}
	h.fileAbsence(r, in)
}

func (h *Handler) fileAbsence(r *request, in service.AbsenceInput) {
	absence, err := h.services.Absences.RequestAbsence(r.ctx, r.user, in)
	if err != nil {
		h.replyError(r, err)
		return
	}

	h.reply(r, "📨 Žádost odeslána ke schválení:\n"+formatAbsence(absence))
	absence.User = *r.user
	h.notifyAdmins(r, absence)
}

func (h *Handler) showMyAbsences(r *request) {
	if !h.requireUser(r) {
		return
	}

	absences, err := h.services.Absences.ListForUser(r.ctx, r.user.ID)
	if err != nil {
		h.replyError(r, err)
		return
	}
	if len(absences) == 0 {
		h.reply(r, "📭 Zatím žádné žádosti.")
		return
	}

	lines := []string{"📋 Moje nepřítomnosti:"}
	for i := range absences {
		if i == maxListedAbsences {
			lines = append(lines, fmt.Sprintf("… a %d starších", len(absences)-maxListedAbsences))
			break
		}
		lines = append(lines, formatAbsence(&absences[i]))
	}
	h.reply(r, strings.Join(lines, "\n"))
}

func (h *Handler) withdrawAbsence(r *request) {
	if !h.requireUser(r) {
		return
	}

	id, err := parseID(r.args)
	if err != nil {
		h.reply(r, "Použití: /withdraw id (čísla najdeš v /myabsences)")
		return
	}
	if err := h.services.Absences.DeleteAbsence(r.ctx, r.user, id); err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, fmt.Sprintf("🗑 Žádost #%d stažena.", id))
}

func (h *Handler) closeIllness(r *request) {
	if !h.requireUser(r) {
		return
	}

	parts := strings.Fields(r.args)
	if len(parts) != 2 {
		h.reply(r, "Použití: /closeillness id DD.MM.RRRR")
		return
	}
	id, err := parseID(parts[0])
	if err != nil {
		h.reply(r, "Použití: /closeillness id DD.MM.RRRR")
		return
	}
	end, err := parseDate(parts[1], h.services.Clock.Now())
	if err != nil {
		h.replyError(r, err)
		return
	}

	if err := h.services.Absences.CloseIllness(r.ctx, r.user, id, end); err != nil {
		h.replyError(r, err)
		return
	}
	h.reply(r, fmt.Sprintf("✅ Nemoc #%d je ukončená k %s (pokud byla schválená a otevřená).", id, formatDate(end)))
}

func (h *Handler) parseDates(parts []string) ([]string, error) {
	now := h.services.Clock.Now()
	dates := make([]string, 0, len(parts))
	for _, p := range parts {
		d, err := parseDate(p, now)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
