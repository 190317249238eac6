package services

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"festival-bot-backend/internal/models"
)

// ConfigSource is the persistence surface behind the config cache.
type ConfigSource interface {
	AllConfigEntries() ([]models.ConfigEntry, error)
	UpsertConfigEntry(e *models.ConfigEntry) error
}

type configValue struct {
	raw       string
	valueType string
}

// ConfigStore is a read-through cache over dynamically editable settings
// and texts. Reads after the TTL expires reload the whole snapshot in one
// pass; the new map is swapped in atomically so concurrent readers never
// observe a half-refreshed cache.
type ConfigStore struct {
	source ConfigSource
	ttl    time.Duration

	mu       sync.RWMutex
	snapshot map[string]configValue
	loadedAt time.Time

	now func() time.Time
}

func NewConfigStore(source ConfigSource, ttl time.Duration) *ConfigStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ConfigStore{
		source:   source,
		ttl:      ttl,
		snapshot: make(map[string]configValue),
		now:      time.Now,
	}
}

func (c *ConfigStore) lookup(key string) (configValue, bool) {
	c.mu.RLock()
	fresh := !c.loadedAt.IsZero() && c.now().Sub(c.loadedAt) < c.ttl
	v, ok := c.snapshot[key]
	c.mu.RUnlock()

	if fresh {
		return v, ok
	}

	c.refresh()

	c.mu.RLock()
	v, ok = c.snapshot[key]
	c.mu.RUnlock()
	return v, ok
}

func (c *ConfigStore) refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if !c.loadedAt.IsZero() && c.now().Sub(c.loadedAt) < c.ttl {
		return
	}

	entries, err := c.source.AllConfigEntries()
	if err != nil {
		// Serve the stale snapshot rather than failing reads.
		log.Printf("[configstore] refresh failed: %v", err)
		c.loadedAt = c.now()
		return
	}

	next := make(map[string]configValue, len(entries))
	for _, e := range entries {
		next[e.Key] = configValue{raw: e.Value, valueType: e.ValueType}
	}
	c.snapshot = next
	c.loadedAt = c.now()
}

// ForceRefresh invalidates the snapshot so the next read reloads it.
func (c *ConfigStore) ForceRefresh() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
	c.refresh()
}

func (c *ConfigStore) Text(key, fallback string) string {
	v, ok := c.lookup(key)
	if !ok {
		return fallback
	}
	return v.raw
}

func (c *ConfigStore) Int(key string, fallback int) int {
	v, ok := c.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v.raw)
	if err != nil {
		return fallback
	}
	return n
}

func (c *ConfigStore) Bool(key string, fallback bool) bool {
	v, ok := c.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v.raw)
	if err != nil {
		return fallback
	}
	return b
}

// JSON decodes a structured entry into dest, returning false when the key
// is absent or does not decode.
func (c *ConfigStore) JSON(key string, dest interface{}) bool {
	v, ok := c.lookup(key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(v.raw), dest) == nil
}

// Set writes through to storage and patches the snapshot in place so a
// subsequent read on this instance sees the new value without waiting for
// the TTL. Other instances see it after their next refresh.
func (c *ConfigStore) Set(key, value, valueType string) error {
	entry := &models.ConfigEntry{Key: key, Value: value, ValueType: valueType}
	if err := c.source.UpsertConfigEntry(entry); err != nil {
		return err
	}
	c.mu.Lock()
	c.snapshot[key] = configValue{raw: value, valueType: valueType}
	c.mu.Unlock()
	return nil
}

// IncrementCounter bumps an integer entry, used for the operator error
// counter. Best effort: a lost increment under races with another process
// is acceptable for an alerting metric.
func (c *ConfigStore) IncrementCounter(key string) int {
	n := c.Int(key, 0) + 1
	if err := c.Set(key, strconv.Itoa(n), models.ConfigTypeInt); err != nil {
		log.Printf("[configstore] counter %s: %v", key, err)
	}
	return n
}
