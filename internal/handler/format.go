package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dochazka-bot/internal/models"
	"dochazka-bot/internal/service"
	"dochazka-bot/pkg/timefmt"
)

const displayDate = "02.01.2006"

// parseDate accepts DD.MM.YYYY, D.M.YYYY, YYYY-MM-DD and DD.MM (current year).
func parseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006", "2.1.2006", timefmt.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timefmt.DateLayout), nil
		}
	}
	for _, layout := range []string{"02.01.", "2.1.", "02.01", "2.1"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Format(timefmt.DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q, použij DD.MM.RRRR", service.ErrInvalidDateRange, s)
}

// parseMonth accepts MM.YYYY, M.YYYY and YYYY-MM.
func parseMonth(s string) (int, time.Month, error) {
	for _, layout := range []string{"01.2006", "1.2006", "2006-01"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.Year(), t.Month(), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q, použij MM.RRRR", service.ErrInvalidDateRange, s)
}

func formatDate(day string) string {
	t, err := time.Parse(timefmt.DateLayout, day)
	if err != nil {
		return day
	}
	return t.Format(displayDate)
}

func formatClock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--:--"
	}
	return t.In(loc).Format("15:04")
}

var czechMonths = [...]string{"", "leden", "únor", "březen", "duben", "květen", "červen",
	"červenec", "srpen", "září", "říjen", "listopad", "prosinec"}

func formatDay(report *service.DayReport, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n", formatDate(report.Date))

	if report.Record == nil || report.Record.CheckIn == nil {
		b.WriteString("Dnes ještě žádný příchod.")
		return b.String()
	}

	fmt.Fprintf(&b, "🟢 Příchod: %s\n", formatClock(report.Record.CheckIn, loc))
	if report.Record.CheckOut != nil {
		fmt.Fprintf(&b, "🔴 Odchod: %s\n", formatClock(report.Record.CheckOut, loc))
	}
	for _, p := range report.Pauses {
		paid := ""
		if p.Paid {
			paid = " (placená)"
		}
		fmt.Fprintf(&b, "  %s %s–%s%s\n", p.Category.Label(), formatClock(&p.StartedAt, loc), formatClock(p.EndedAt, loc), paid)
	}
	fmt.Fprintf(&b, "⏱ Odpracováno: %s", timefmt.SecondsToHuman(report.WorkedSeconds))

	switch report.State {
	case models.DayOnPause:
		b.WriteString("\n⏸ Právě máš pauzu.")
	case models.DayCheckedIn:
		b.WriteString("\n▶️ Právě pracuješ.")
	}
	return b.String()
}

func formatMonth(m *service.MonthSummary, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s, %s %d\n\n", m.DisplayName, czechMonths[m.Month], m.Year)

	if len(m.Days) == 0 {
		b.WriteString("Žádná docházka.\n")
	}
	for _, d := range m.Days {
		mark := ""
		switch {
		case d.IsWeekend:
			mark = " 🌙 víkend"
		case d.IsHoliday:
			mark = " 🎌 svátek"
		}
		fmt.Fprintf(&b, "%s  %s–%s  %s%s\n",
			formatDate(d.Date)[:6], formatClock(d.CheckIn, loc), formatClock(d.CheckOut, loc),
			timefmt.SecondsToHuman(d.WorkedSeconds), mark)
	}

	fmt.Fprintf(&b, "\nOdpracováno (po–pá): %s\n", timefmt.SecondsToHuman(m.WorkedSeconds))
	if m.WeekendSeconds > 0 {
		fmt.Fprintf(&b, "Víkendy: %s\n", timefmt.SecondsToHuman(m.WeekendSeconds))
	}
	if m.Role == string(models.RoleTempWorker) {
		b.WriteString("Brigádník: bez fondu pracovní doby.")
		return b.String()
	}
	fmt.Fprintf(&b, "Fond: %.1f dní (%d prac. dní − %.1f nepřítomnost)\n", m.EffectiveWorkdays, m.WorkdaysSoFar, m.AbsenceDays)
	fmt.Fprintf(&b, "Očekáváno: %s\n", timefmt.SecondsToHuman(m.ExpectedSeconds))
	fmt.Fprintf(&b, "Saldo: %s", timefmt.SignedHuman(m.SurplusSeconds))
	return b.String()
}

func formatLeave(s *service.LeaveSummary) string {
	return fmt.Sprintf(`🏖 Dovolená %d
Nárok: %.1f dní
Čerpáno: %.1f
Zbývá: %.1f

🤒 Sickdays
Nárok: %d
Čerpáno: %d
Zbývá: %d`,
		s.Year, s.VacationTotal, s.VacationUsed, s.VacationRemaining,
		s.SickTotal, s.SickUsed, s.SickRemaining)
}

func formatAbsence(a *models.AbsenceRequest) string {
	var period string
	switch {
	case a.IsOpenIllness():
		period = "od " + formatDate(a.DateFrom) + " (neukončeno)"
	case a.DateFrom == a.DateTo:
		period = formatDate(a.DateFrom)
	default:
		period = formatDate(a.DateFrom) + " – " + formatDate(a.DateTo)
	}

	text := fmt.Sprintf("#%d %s %s %s", a.ID, a.Type.Label(), period, approvalLabel(a.Approval))
	if len(a.HalfDays) > 0 {
		halves := make([]string, 0, len(a.HalfDays))
		for _, d := range a.HalfDays {
			halves = append(halves, formatDate(d))
		}
		text += "\n   půldny: " + strings.Join(halves, ", ")
	}
	if a.Note != "" {
		text += "\n   📝 " + a.Note
	}
	return text
}

func approvalLabel(s models.ApprovalState) string {
	switch s {
	case models.ApprovalApproved:
		return "✅ schváleno"
	case models.ApprovalRejected:
		return "❌ zamítnuto"
	}
	return "⏳ čeká"
}

var userMessages = []struct {
	err  error
	text string
}{
	{service.ErrAlreadyCheckedIn, "Už jsi v práci."},
	{service.ErrAlreadyCheckedOut, "Dnes už máš odchod zapsaný."},
	{service.ErrNotCheckedIn, "Dnes ještě nemáš příchod."},
	{service.ErrPauseAlreadyOpen, "Už máš rozběhnutou pauzu."},
	{service.ErrNoOpenPause, "Nemáš žádnou rozběhnutou pauzu."},
	{service.ErrInvalidAbsenceType, "Neznámý druh nepřítomnosti."},
	{service.ErrAbsenceAlreadyDecided, "O žádosti už bylo rozhodnuto."},
	{service.ErrForbidden, "Na tohle nemáš oprávnění."},
	{service.ErrNotFound, "Nenalezeno."},
	{service.ErrInvalidCredentials, "Špatné jméno nebo heslo."},
	{service.ErrUserInactive, "Účet je deaktivovaný."},
}

// userMessage is the Czech text for a user-correctable error. Validation errors
// carry their detail, which is shown as is.
func userMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return err.Error()
}
