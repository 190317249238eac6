package telegram

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BotManager runs the single festival bot. With WEBHOOK_BASE_URL set and
// the WEBHOOK_ENABLED config entry on, it registers a webhook and serves
// pushed updates; otherwise it falls back to a getUpdates long-poll loop.
// Either way every update is handled in its own goroutine, serialized per
// chat by the StateManager.
type BotManager struct {
	client         *Client
	handler        *UpdateHandler
	cfg            *services.ConfigStore
	webhookBaseURL string
	webhookSecret  string
	pollInterval   time.Duration
	secret         string
	webhookMode    bool

	stopCh chan struct{}
}

func NewBotManager(client *Client, handler *UpdateHandler, cfg *services.ConfigStore, webhookBaseURL, webhookSecret string, pollInterval time.Duration) *BotManager {
	return &BotManager{
		client:         client,
		handler:        handler,
		cfg:            cfg,
		webhookBaseURL: webhookBaseURL,
		webhookSecret:  webhookSecret,
		pollInterval:   pollInterval,
		secret:         tokenSecret(client.Token()),
		stopCh:         make(chan struct{}),
	}
}

func tokenSecret(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h[:16])
}

func (m *BotManager) Start() {
	m.webhookMode = m.webhookBaseURL != "" && m.cfg.Bool("WEBHOOK_ENABLED", true)
	if m.webhookMode {
		webhookURL := fmt.Sprintf("%s/webhook/bot/%s", m.webhookBaseURL, m.secret)
		if err := m.client.SetWebhook(webhookURL, m.webhookSecret); err != nil {
			log.Printf("[BotManager] failed to set webhook: %v", err)
			return
		}
		log.Printf("[BotManager] started (webhook: %s)", webhookURL)
		return
	}

	if err := m.client.DeleteWebhook(); err != nil {
		log.Printf("[BotManager] delete webhook: %v", err)
	}
	go m.pollLoop()
	log.Println("[BotManager] started (long-poll)")
}

func (m *BotManager) Stop() {
	close(m.stopCh)
	if m.webhookMode {
		m.client.DeleteWebhook()
	}
	log.Println("[BotManager] stopped")
}

func (m *BotManager) pollLoop() {
	var offset int64
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		updates, err := m.client.GetUpdates(offset, 30)
		if err != nil {
			log.Printf("[BotManager] getUpdates: %v", err)
			time.Sleep(m.pollInterval)
			continue
		}
		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			go m.handler.Handle(upd)
		}
	}
}

func (m *BotManager) HandleWebhook(c *gin.Context) {
	if c.Param("secret") != m.secret {
		c.Status(http.StatusNotFound)
		return
	}

	if m.webhookSecret != "" {
		headerSecret := c.GetHeader("X-Telegram-Bot-Api-Secret-Token")
		if headerSecret != m.webhookSecret {
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var upd Update
	if err := json.Unmarshal(body, &upd); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	go m.handler.Handle(upd)

	c.Status(http.StatusOK)
}
