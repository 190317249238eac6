package telegram

import "sync"

// Conversation states. The canonical copy lives in memory per active
// session; durable facts (consent, survey answers, reservations, quest
// progress, jobs) live in the database, so after a restart a participant
// re-enters at the right place via the /start short-circuit. Only the
// position inside an unfinished survey is lost, which is an accepted
// limitation.
const (
	StateAnonymous       = ""
	StateAwaitingConsent = "awaiting_consent"
	StateSurvey          = "survey"
	StateMainMenu        = "main_menu"
)

type SessionState struct {
	State         string
	ParticipantID uint
	SurveyStep    int
}

// StateManager keeps per-participant conversation state and hands out the
// per-participant lock that serializes event handling: no two transitions
// for one chat run concurrently, while different chats proceed
// independently.
type StateManager struct {
	mu       sync.RWMutex
	sessions map[int64]*SessionState
	locks    map[int64]*sync.Mutex
}

func NewStateManager() *StateManager {
	return &StateManager{
		sessions: make(map[int64]*SessionState),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Serialize acquires the chat's lock and returns the unlock func.
func (m *StateManager) Serialize(chatID int64) func() {
	m.mu.Lock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[chatID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *StateManager) Get(chatID int64) *SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return &SessionState{}
	}
	cp := *s
	return &cp
}

func (m *StateManager) Set(chatID int64, state *SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = state
}

func (m *StateManager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}

func (m *StateManager) UpdateField(chatID int64, fn func(s *SessionState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		s = &SessionState{}
		m.sessions[chatID] = s
	}
	fn(s)
}
