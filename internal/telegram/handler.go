package telegram

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"festival-bot-backend/internal/models"
	"festival-bot-backend/internal/services"
	"festival-bot-backend/internal/ws"
)

// botAPI is the slice of the Bot API client the handler needs. Tests
// substitute a fake.
type botAPI interface {
	SendMessage(chatID int64, text, parseMode string, replyMarkup interface{}) (int64, error)
	SendPhoto(chatID int64, photoURL, caption, parseMode string, replyMarkup interface{}) (int64, error)
	EditMessageText(chatID, messageID int64, text, parseMode string, replyMarkup interface{}) error
	AnswerCallbackQuery(callbackID, text string, showAlert bool) error
	FileURL(fileID string) (string, error)
}

// UpdateHandler drives the whole visitor conversation: consent, survey,
// menu sections, slot booking, the quest and sticker generation. One
// update is handled at a time per chat; different chats run in parallel.
type UpdateHandler struct {
	api          botAPI
	state        *StateManager
	cfg          *services.ConfigStore
	participants *services.ParticipantService
	booking      *services.SlotBookingService
	quest        *services.QuestTracker
	pipeline     *services.GenerationPipeline
	hub          *ws.Hub
}

func NewUpdateHandler(
	api botAPI,
	state *StateManager,
	cfg *services.ConfigStore,
	participants *services.ParticipantService,
	booking *services.SlotBookingService,
	quest *services.QuestTracker,
	pipeline *services.GenerationPipeline,
	hub *ws.Hub,
) *UpdateHandler {
	return &UpdateHandler{
		api:          api,
		state:        state,
		cfg:          cfg,
		participants: participants,
		booking:      booking,
		quest:        quest,
		pipeline:     pipeline,
		hub:          hub,
	}
}

// Handle processes one update end to end under the chat's lock.
func (h *UpdateHandler) Handle(upd Update) {
	ev, ok := classify(upd)
	if !ok {
		return
	}

	unlock := h.state.Serialize(ev.ChatID)
	defer unlock()

	switch ev.Kind {
	case EventStart:
		h.handleStart(ev)
	case EventCallback:
		h.handleCallback(ev)
	case EventText:
		h.handleText(ev)
	case EventPhoto:
		h.handlePhoto(ev)
	}
}

func (h *UpdateHandler) handleStart(ev Event) {
	if ev.From == nil {
		return
	}
	p, created, err := h.participants.GetOrCreate(ev.From.ID, ev.From.Username, ev.From.FirstName, ev.From.LastName)
	if err != nil {
		h.fail(ev, err)
		return
	}
	if created {
		h.hub.Broadcast(ws.WSMessage{Type: "participant_joined", Data: map[string]interface{}{
			"participant_id": p.ID,
			"telegram_id":    p.TelegramID,
			"username":       p.Username,
		}})
	}

	// Deep links like /start q3 register a quest step regardless of the
	// conversation position, as long as the visitor has consented.
	if strings.HasPrefix(ev.Payload, "q") && p.ConsentGiven {
		if step, err := strconv.Atoi(ev.Payload[1:]); err == nil {
			h.registerQuestStep(ev, p.ID, step)
			return
		}
	}

	if p.ConsentGiven && p.SurveyCompleted {
		h.state.Set(ev.ChatID, &SessionState{State: StateMainMenu, ParticipantID: p.ID})
		h.sendMenu(ev.ChatID, false)
		return
	}
	if p.ConsentGiven && !p.SurveyCompleted {
		// Consent survives a restart; an unfinished survey restarts from
		// the first question.
		h.beginSurveyOrMenu(ev.ChatID, p.ID)
		return
	}

	h.state.Set(ev.ChatID, &SessionState{State: StateAwaitingConsent, ParticipantID: p.ID})
	text := h.cfg.Text("CONSENT_TEXT", defaultConsentText)
	if _, err := h.api.SendMessage(ev.ChatID, text, "HTML", ConsentKeyboard()); err != nil {
		log.Printf("telegram: send consent chat=%d: %v", ev.ChatID, err)
	}
}

func (h *UpdateHandler) handleCallback(ev Event) {
	// Stop the client spinner before doing any work. slot_full answers
	// with its own alert below.
	if ev.Text != "slot_full" {
		if err := h.api.AnswerCallbackQuery(ev.CallbackID, "", false); err != nil {
			log.Printf("telegram: answer callback: %v", err)
		}
	}

	s := h.state.Get(ev.ChatID)
	if s.ParticipantID == 0 {
		// Session predates a restart. Durable facts are in the database,
		// so point the visitor back at /start.
		h.send(ev.ChatID, h.cfg.Text("NEED_CONSENT_TEXT", defaultNeedConsent), nil)
		return
	}

	data := ev.Text
	switch {
	case data == "consent_ok":
		h.handleConsent(ev, s)
	case data == "vacancy_yes" || data == "vacancy_no":
		h.handleVacancyAnswer(ev, s, data == "vacancy_yes")
	case data == "main":
		h.state.UpdateField(ev.ChatID, func(st *SessionState) { st.State = StateMainMenu })
		h.sendMenu(ev.ChatID, false)
	case data == "map":
		h.sendSection(ev.ChatID, "MAP_TEXT", defaultMapText, BackToMenuKeyboard())
	case data == "forest":
		h.sendSection(ev.ChatID, "FOREST_TEXT", defaultForestText, MapAndMenuKeyboard())
	case data == "workshop":
		h.sendSection(ev.ChatID, "WORKSHOP_TEXT", defaultWorkshopText, MapAndMenuKeyboard())
	case data == "career":
		h.sendSection(ev.ChatID, "CAREER_TEXT", defaultCareerText, BackToMenuKeyboard())
	case data == "schedule":
		h.sendSection(ev.ChatID, "SCHEDULE_TEXT", defaultScheduleText, BackToMenuKeyboard())
	case data == "dance":
		h.sendSection(ev.ChatID, "DANCE_INTRO_TEXT", defaultDanceIntro, DanceIntroKeyboard())
	case data == "dance_slots":
		h.showSlotPicker(ev)
	case strings.HasPrefix(data, "slot|"):
		h.handleSlotPick(ev, s, data)
	case data == "slot_full":
		if err := h.api.AnswerCallbackQuery(ev.CallbackID, "Этот слот уже заполнен", true); err != nil {
			log.Printf("telegram: answer callback: %v", err)
		}
	case data == "quest":
		h.showQuestIntro(ev, s)
	case strings.HasPrefix(data, "hint|"):
		h.showQuestHint(ev, data)
	case data == "sticker":
		h.showStickerStatus(ev, s)
	default:
		log.Printf("telegram: unknown callback %q chat=%d", data, ev.ChatID)
	}
}

func (h *UpdateHandler) handleConsent(ev Event, s *SessionState) {
	if err := h.participants.GiveConsent(s.ParticipantID); err != nil {
		h.fail(ev, err)
		return
	}
	h.beginSurveyOrMenu(ev.ChatID, s.ParticipantID)
}

// beginSurveyOrMenu moves a consented participant to the survey, or
// straight to the menu when the survey is switched off.
func (h *UpdateHandler) beginSurveyOrMenu(chatID int64, participantID uint) {
	if !h.cfg.Bool("SURVEY_ENABLED", true) {
		if err := h.participants.CompleteSurvey(participantID, false); err != nil {
			log.Printf("telegram: skip survey participant=%d: %v", participantID, err)
		}
		h.state.Set(chatID, &SessionState{State: StateMainMenu, ParticipantID: participantID})
		h.sendMenu(chatID, true)
		return
	}
	h.state.Set(chatID, &SessionState{State: StateSurvey, ParticipantID: participantID, SurveyStep: 1})
	h.send(chatID, h.surveyQuestions()[0], nil)
}

func (h *UpdateHandler) handleText(ev Event) {
	s := h.state.Get(ev.ChatID)
	if s.State != StateSurvey {
		h.send(ev.ChatID, h.cfg.Text("DISAMBIGUATION_TEXT", defaultDisambiguate), BackToMenuKeyboard())
		return
	}

	questions := h.surveyQuestions()
	if s.SurveyStep >= len(questions) {
		// The vacancy question takes buttons only; typed text re-shows it.
		h.send(ev.ChatID, questions[len(questions)-1], VacancyKeyboard())
		return
	}
	if ev.Text == "" {
		h.send(ev.ChatID, questions[s.SurveyStep-1], nil)
		return
	}
	if err := h.participants.RecordSurveyAnswer(s.ParticipantID, s.SurveyStep, ev.Text); err != nil {
		h.fail(ev, err)
		return
	}

	next := s.SurveyStep + 1
	h.state.UpdateField(ev.ChatID, func(st *SessionState) { st.SurveyStep = next })
	if next == len(questions) {
		// The final question is answered with buttons, not free text.
		h.send(ev.ChatID, questions[next-1], VacancyKeyboard())
		return
	}
	h.send(ev.ChatID, questions[next-1], nil)
}

func (h *UpdateHandler) handleVacancyAnswer(ev Event, s *SessionState, interested bool) {
	answer := "нет"
	reply := h.cfg.Text("VACANCY_NO_TEXT", defaultVacancyNo)
	if interested {
		answer = "да"
		reply = h.cfg.Text("VACANCY_YES_TEXT", defaultVacancyYes)
	}
	step := len(h.surveyQuestions())
	if err := h.participants.RecordSurveyAnswer(s.ParticipantID, step, answer); err != nil {
		h.fail(ev, err)
		return
	}
	if err := h.participants.CompleteSurvey(s.ParticipantID, interested); err != nil {
		h.fail(ev, err)
		return
	}
	h.state.Set(ev.ChatID, &SessionState{State: StateMainMenu, ParticipantID: s.ParticipantID})
	h.send(ev.ChatID, reply, nil)
	h.sendMenu(ev.ChatID, true)
}

func (h *UpdateHandler) showSlotPicker(ev Event) {
	occupancy, err := h.booking.ListOccupancy()
	if err != nil {
		h.fail(ev, err)
		return
	}
	if len(occupancy) == 0 {
		h.send(ev.ChatID, "Запись пока закрыта, загляни позже!", BackToMenuKeyboard())
		return
	}
	h.send(ev.ChatID, h.cfg.Text("DANCE_CHOOSE_SLOT_TEXT", defaultDanceChooseSlot), SlotPickerKeyboard(occupancy))
}

func (h *UpdateHandler) handleSlotPick(ev Event, s *SessionState, data string) {
	parts := strings.SplitN(data, "|", 3)
	if len(parts) != 3 {
		return
	}
	day, timeSlot := parts[1], parts[2]

	outcome, err := h.booking.Reserve(s.ParticipantID, day, timeSlot)
	if err != nil {
		if _, ok := err.(services.ErrUnknownSlot); ok {
			// The slot was deactivated after the keyboard was rendered.
			h.showSlotPicker(ev)
			return
		}
		h.fail(ev, err)
		return
	}

	label := fmt.Sprintf("%s, %s", day, timeSlot)
	switch outcome {
	case services.Reserved:
		h.hub.Broadcast(ws.WSMessage{Type: "slot_reserved", Data: map[string]interface{}{
			"participant_id": s.ParticipantID,
			"day":            day,
			"time_slot":      timeSlot,
		}})
		text := fmt.Sprintf(h.cfg.Text("DANCE_CONFIRMATION_TEXT", defaultDanceConfirmation), label)
		h.send(ev.ChatID, text, BackToMenuKeyboard())
	case services.AlreadyReserved:
		text := fmt.Sprintf(h.cfg.Text("DANCE_CONFIRMATION_TEXT", defaultDanceConfirmation), label)
		h.send(ev.ChatID, "Ты уже записан: "+text, BackToMenuKeyboard())
	case services.SlotFull:
		occupancy, err := h.booking.ListOccupancy()
		if err != nil {
			h.fail(ev, err)
			return
		}
		h.send(ev.ChatID, h.cfg.Text("DANCE_FULL_TEXT", defaultDanceFull), SlotPickerKeyboard(occupancy))
	}
}

func (h *UpdateHandler) showQuestIntro(ev Event, s *SessionState) {
	done, total, err := h.quest.ProgressSummary(s.ParticipantID)
	if err != nil {
		h.fail(ev, err)
		return
	}
	if done >= total {
		h.send(ev.ChatID, h.cfg.Text("QUEST_DONE_TEXT", defaultQuestDone), BackToMenuKeyboard())
		return
	}
	text := h.cfg.Text("QUEST_INTRO_TEXT", defaultQuestIntro)
	if done > 0 {
		text += fmt.Sprintf("\n\nНайдено: %d из %d", done, total)
	}
	h.send(ev.ChatID, text, QuestIntroKeyboard())
}

func (h *UpdateHandler) showQuestHint(ev Event, data string) {
	step, err := strconv.Atoi(strings.TrimPrefix(data, "hint|"))
	if err != nil || step < 1 || step > h.quest.TotalSteps() {
		return
	}
	key := fmt.Sprintf("QUEST_STEP_%d_HINT", step)
	hint := h.cfg.Text(key, fmt.Sprintf("Подсказка №%d: ищи QR-код на площадке %d!", step, step))
	if step < h.quest.TotalSteps() {
		h.send(ev.ChatID, hint, QuestHintKeyboard(step+1))
		return
	}
	h.send(ev.ChatID, hint, BackToMenuKeyboard())
}

func (h *UpdateHandler) registerQuestStep(ev Event, participantID uint, step int) {
	outcome, err := h.quest.RegisterStep(participantID, step)
	if err != nil {
		h.fail(ev, err)
		return
	}
	done, total, err := h.quest.ProgressSummary(participantID)
	if err != nil {
		h.fail(ev, err)
		return
	}

	switch outcome {
	case services.StepOutOfRange:
		h.send(ev.ChatID, "Хм, такого шага в квесте нет 🤔", BackToMenuKeyboard())
	case services.StepAlreadyDone:
		h.send(ev.ChatID, fmt.Sprintf("Этот стикер у тебя уже есть! Найдено: %d из %d", done, total), BackToMenuKeyboard())
	case services.StepUpdated:
		if done >= total {
			h.hub.Broadcast(ws.WSMessage{Type: "quest_completed", Data: map[string]interface{}{
				"participant_id": participantID,
			}})
			h.send(ev.ChatID, h.cfg.Text("QUEST_DONE_TEXT", defaultQuestDone), BackToMenuKeyboard())
			return
		}
		h.send(ev.ChatID, fmt.Sprintf("Есть! Найдено: %d из %d", done, total), QuestHintKeyboard(nextMissingStep(doneSteps(h.quest, participantID), total)))
	}
}

func (h *UpdateHandler) showStickerStatus(ev Event, s *SessionState) {
	status, packURL, err := h.pipeline.Status(s.ParticipantID)
	if err != nil {
		h.fail(ev, err)
		return
	}
	switch status {
	case models.JobStatusOK:
		h.send(ev.ChatID, fmt.Sprintf(h.cfg.Text("STICKER_READY_TEXT", defaultStickerReady), packURL), BackToMenuKeyboard())
	case models.JobStatusPending:
		h.send(ev.ChatID, h.cfg.Text("STICKER_PENDING_TEXT", defaultStickerPending), BackToMenuKeyboard())
	default:
		// No job yet, or the last one failed: invite a (new) photo.
		h.send(ev.ChatID, h.cfg.Text("STICKER_INTRO_TEXT", defaultStickerIntro), BackToMenuKeyboard())
	}
}

func (h *UpdateHandler) handlePhoto(ev Event) {
	s := h.state.Get(ev.ChatID)
	if s.ParticipantID == 0 {
		h.send(ev.ChatID, h.cfg.Text("NEED_CONSENT_TEXT", defaultNeedConsent), nil)
		return
	}
	p, err := h.participants.Get(s.ParticipantID)
	if err != nil {
		h.fail(ev, err)
		return
	}
	if !p.ConsentGiven {
		h.send(ev.ChatID, h.cfg.Text("NEED_CONSENT_TEXT", defaultNeedConsent), nil)
		return
	}
	if !h.cfg.Bool("GENERATION_ENABLED", true) {
		h.send(ev.ChatID, "Генерация стикеров сейчас выключена.", BackToMenuKeyboard())
		return
	}

	photoURL, err := h.api.FileURL(ev.FileID)
	if err != nil {
		h.fail(ev, err)
		return
	}

	outcome, packURL, err := h.pipeline.Submit(s.ParticipantID, ev.ChatID, photoURL)
	if err != nil {
		if err == services.ErrQueueFull {
			h.send(ev.ChatID, h.cfg.Text("STICKER_QUEUE_TEXT", defaultStickerQueue), BackToMenuKeyboard())
			return
		}
		h.fail(ev, err)
		return
	}
	switch outcome {
	case services.SubmitAccepted:
		h.send(ev.ChatID, h.cfg.Text("STICKER_PENDING_TEXT", defaultStickerPending), nil)
	case services.SubmitAlreadyPending:
		h.send(ev.ChatID, h.cfg.Text("STICKER_PENDING_TEXT", defaultStickerPending), BackToMenuKeyboard())
	case services.SubmitAlreadyCompleted:
		h.send(ev.ChatID, fmt.Sprintf(h.cfg.Text("STICKER_READY_TEXT", defaultStickerReady), packURL), BackToMenuKeyboard())
	}
}

func (h *UpdateHandler) sendMenu(chatID int64, first bool) {
	text := h.cfg.Text("MAIN_MENU_TEXT", defaultMainMenu)
	if first {
		text = h.cfg.Text("MAIN_MENU_FIRST_TEXT", defaultMainMenuFirst)
	}
	h.send(chatID, text, MainMenuKeyboard())
}

func (h *UpdateHandler) sendSection(chatID int64, key, fallback string, kb *InlineKeyboardMarkup) {
	h.send(chatID, h.cfg.Text(key, fallback), kb)
}

func (h *UpdateHandler) send(chatID int64, text string, kb *InlineKeyboardMarkup) {
	var markup interface{}
	if kb != nil {
		markup = kb
	}
	if _, err := h.api.SendMessage(chatID, text, "HTML", markup); err != nil {
		log.Printf("telegram: send chat=%d: %v", chatID, err)
	}
}

// fail logs, bumps the error counter visible on the dashboard and sends
// a generic apology so the visitor is never left without a reply.
func (h *UpdateHandler) fail(ev Event, err error) {
	log.Printf("telegram: handle chat=%d: %v", ev.ChatID, err)
	h.cfg.IncrementCounter("ERROR_COUNT_24H")
	h.send(ev.ChatID, h.cfg.Text("GENERIC_ERROR_TEXT", defaultGenericError), BackToMenuKeyboard())
}

func (h *UpdateHandler) surveyQuestions() []string {
	var qs []string
	if h.cfg.JSON("SURVEY_QUESTIONS", &qs) && len(qs) > 0 {
		return qs
	}
	return defaultSurveyQuestions
}

func doneSteps(q *services.QuestTracker, participantID uint) []int {
	steps, err := q.CompletedSteps(participantID)
	if err != nil {
		return nil
	}
	return steps
}

// nextMissingStep picks the first step the participant has not found,
// so the hint button always points somewhere useful.
func nextMissingStep(done []int, total int) int {
	have := make(map[int]bool, len(done))
	for _, s := range done {
		have[s] = true
	}
	for i := 1; i <= total; i++ {
		if !have[i] {
			return i
		}
	}
	return total
}
