package telegram

import (
	"fmt"
	"log"

	"festival-bot-backend/internal/services"
	"festival-bot-backend/internal/ws"
)

// Notifier delivers sticker pipeline results back into the chat and
// mirrors them onto the dashboard feed.
type Notifier struct {
	api botAPI
	hub *ws.Hub
	cfg *services.ConfigStore
}

func NewNotifier(api botAPI, hub *ws.Hub, cfg *services.ConfigStore) *Notifier {
	return &Notifier{api: api, hub: hub, cfg: cfg}
}

func (n *Notifier) NotifyPackReady(chatID int64, packURL string) {
	text := fmt.Sprintf(n.cfg.Text("STICKER_READY_TEXT", defaultStickerReady), packURL)
	if _, err := n.api.SendMessage(chatID, text, "HTML", MainMenuKeyboard()); err != nil {
		log.Printf("telegram: notify pack ready chat=%d: %v", chatID, err)
	}
	n.hub.Broadcast(ws.WSMessage{Type: "job_finished", Data: map[string]interface{}{
		"chat_id": chatID,
		"status":  "ok",
	}})
}

func (n *Notifier) NotifyPackFailed(chatID int64) {
	text := n.cfg.Text("STICKER_FAILED_TEXT", defaultStickerFailed)
	if _, err := n.api.SendMessage(chatID, text, "HTML", BackToMenuKeyboard()); err != nil {
		log.Printf("telegram: notify pack failed chat=%d: %v", chatID, err)
	}
	n.hub.Broadcast(ws.WSMessage{Type: "job_finished", Data: map[string]interface{}{
		"chat_id": chatID,
		"status":  "failed",
	}})
}
