package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"festival-bot-backend/internal/models"
)

type stubConfigSource struct {
	mu      sync.Mutex
	entries map[string]models.ConfigEntry
	loads   int
	failing bool
}

func newStubConfigSource() *stubConfigSource {
	return &stubConfigSource{entries: make(map[string]models.ConfigEntry)}
}

func (s *stubConfigSource) set(key, value, valueType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = models.ConfigEntry{Key: key, Value: value, ValueType: valueType}
}

func (s *stubConfigSource) AllConfigEntries() ([]models.ConfigEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.failing {
		return nil, errors.New("db down")
	}
	out := make([]models.ConfigEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

func (s *stubConfigSource) UpsertConfigEntry(e *models.ConfigEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Key] = *e
	return nil
}

func TestConfigStoreServesSnapshotWithinTTL(t *testing.T) {
	source := newStubConfigSource()
	source.set("GREETING", "hello", models.ConfigTypeText)

	store := NewConfigStore(source, 5*time.Minute)
	base := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	if got := store.Text("GREETING", "fallback"); got != "hello" {
		t.Fatalf("Text = %q, want hello", got)
	}

	// A database-side change is invisible before the TTL expires.
	source.set("GREETING", "changed", models.ConfigTypeText)
	now = base.Add(time.Minute)
	if got := store.Text("GREETING", "fallback"); got != "hello" {
		t.Fatalf("Text within TTL = %q, want stale hello", got)
	}

	now = base.Add(6 * time.Minute)
	if got := store.Text("GREETING", "fallback"); got != "changed" {
		t.Fatalf("Text after TTL = %q, want changed", got)
	}
}

func TestConfigStoreSetVisibleImmediately(t *testing.T) {
	source := newStubConfigSource()
	store := NewConfigStore(source, 5*time.Minute)

	if err := store.Set("MAIN_MENU_TEXT", "Новое меню", models.ConfigTypeText); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := store.Text("MAIN_MENU_TEXT", "fallback"); got != "Новое меню" {
		t.Fatalf("Text = %q, want the written value without any refresh", got)
	}

	source.mu.Lock()
	persisted := source.entries["MAIN_MENU_TEXT"].Value
	source.mu.Unlock()
	if persisted != "Новое меню" {
		t.Fatalf("persisted = %q, want write-through", persisted)
	}
}

func TestConfigStoreForceRefresh(t *testing.T) {
	source := newStubConfigSource()
	source.set("QUEST_TOTAL_STEPS", "9", models.ConfigTypeInt)
	store := NewConfigStore(source, time.Hour)

	if got := store.Int("QUEST_TOTAL_STEPS", 0); got != 9 {
		t.Fatalf("Int = %d, want 9", got)
	}

	source.set("QUEST_TOTAL_STEPS", "12", models.ConfigTypeInt)
	store.ForceRefresh()
	if got := store.Int("QUEST_TOTAL_STEPS", 0); got != 12 {
		t.Fatalf("Int after refresh = %d, want 12", got)
	}
}

func TestConfigStoreServesStaleOnSourceError(t *testing.T) {
	source := newStubConfigSource()
	source.set("GREETING", "hello", models.ConfigTypeText)
	store := NewConfigStore(source, time.Minute)
	base := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	if got := store.Text("GREETING", "fallback"); got != "hello" {
		t.Fatalf("Text = %q, want hello", got)
	}

	source.mu.Lock()
	source.failing = true
	source.mu.Unlock()

	now = base.Add(2 * time.Minute)
	if got := store.Text("GREETING", "fallback"); got != "hello" {
		t.Fatalf("Text during outage = %q, want stale hello", got)
	}
}

func TestConfigStoreTypedGetters(t *testing.T) {
	source := newStubConfigSource()
	source.set("SURVEY_ENABLED", "false", models.ConfigTypeBool)
	source.set("BAD_INT", "abc", models.ConfigTypeInt)
	source.set("SURVEY_QUESTIONS", `["q1","q2"]`, models.ConfigTypeJSON)
	store := NewConfigStore(source, time.Minute)

	if store.Bool("SURVEY_ENABLED", true) {
		t.Fatal("Bool = true, want false")
	}
	if got := store.Int("BAD_INT", 7); got != 7 {
		t.Fatalf("Int on malformed value = %d, want fallback 7", got)
	}

	var qs []string
	if !store.JSON("SURVEY_QUESTIONS", &qs) || len(qs) != 2 {
		t.Fatalf("JSON = %v, want two questions", qs)
	}
	if store.JSON("MISSING", &qs) {
		t.Fatal("JSON on missing key must return false")
	}
}

func TestIncrementCounter(t *testing.T) {
	source := newStubConfigSource()
	store := NewConfigStore(source, time.Minute)

	for i := 1; i <= 3; i++ {
		if got := store.IncrementCounter("ERROR_COUNT_24H"); got != i {
			t.Fatalf("counter = %d, want %d", got, i)
		}
	}
	if got := store.Int("ERROR_COUNT_24H", 0); got != 3 {
		t.Fatalf("Int = %d, want 3", got)
	}
}
