package handler

func (h *Handler) handleCommand(r *request) {
	switch r.message.Command() {
	case "start", "help":
		h.sendHelpMessage(r)
	case "login":
		h.login(r)
	case "me":
		h.showProfile(r)
	case "passwd":
		h.changePassword(r)

	// attendance
	case "in", "prichod":
		h.checkIn(r)
	case "out", "odchod":
		h.checkOut(r)
	case "pause", "pauza":
		h.startPause(r)
	case "doctor", "lekar":
		h.startDoctorVisit(r)
	case "resume", "zpet":
		h.resumeWork(r)
	case "today", "dnes":
		h.showToday(r)

	// reports
	case "month", "mesic":
		h.showMonth(r)
	case "leave", "fond":
		h.showLeave(r)

	// absences
	case "vacation", "dovolena":
		h.requestVacation(r)
	case "halfday", "pulden":
		h.requestHalfDay(r)
	case "sick", "sickday":
		h.requestSickday(r)
	case "illness", "nemoc":
		h.requestIllness(r)
	case "myabsences":
		h.showMyAbsences(r)
	case "withdraw":
		h.withdrawAbsence(r)
	case "closeillness":
		h.closeIllness(r)

	// admin
	case "status":
		h.showStatus(r)
	case "pending":
		h.showPending(r)

	default:
		h.reply(r, "❌ Neznámý příkaz. Seznam příkazů: /help")
	}
}

func (h *Handler) sendHelpMessage(r *request) {
	text := `📋 Docházka

🔑 Účet:
/login jméno heslo - propojit tenhle chat s účtem
/me - můj profil
/passwd nové_heslo - změnit heslo

⏱ Docházka:
/in - příchod
/out - odchod
/pause [oběd|přestávka|jiné] - začít pauzu
/doctor - návštěva lékaře (placená pauza)
/resume - konec pauzy
/today - dnešní den

📊 Přehledy:
/month [MM.RRRR] - měsíční výkaz
/leave [RRRR] - dovolená a sickdays

🏖 Nepřítomnost:
/vacation od [do] [půldny...] - žádost o dovolenou
/halfday datum - půlden dovolené
/sick [datum] - sickday
/illness [od] [do] - nemoc (bez konce = zatím neukončená)
/myabsences - moje žádosti
/withdraw id - stáhnout čekající žádost
/closeillness id datum - ukončit nemoc

Data zadávej jako DD.MM.RRRR.`

	if r.user.IsAdmin() {
		text += `

👑 Administrace:
/status - kdo je dnes v práci
/pending - žádosti ke schválení`
	}

	h.reply(r, text)
}
