package sticker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"festival-bot-backend/internal/services"
	"festival-bot-backend/internal/telegram"
)

const (
	stylizeModel   = "black-forest-labs/flux-kontext-pro"
	removeBGModel  = "851-labs/background-remover"
	stylizePrompt  = "Turn this photo into a bright cartoon sticker portrait, bold outlines, festival vibes"
	packEmoji      = "🎉"
	packTitleLimit = 64
)

// Generator runs the external sticker stages: stylize and background
// removal on Replicate, composition on a dedicated endpoint, and pack
// registration through the Bot API.
type Generator struct {
	httpClient  *http.Client
	apiToken    string
	apiURL      string
	composeURL  string
	bot         *telegram.Client
	botUsername string
}

func NewGenerator(apiToken, apiURL, composeURL string, bot *telegram.Client, botUsername string) *Generator {
	return &Generator{
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		apiToken:    apiToken,
		apiURL:      apiURL,
		composeURL:  composeURL,
		bot:         bot,
		botUsername: botUsername,
	}
}

type predictionRequest struct {
	Input map[string]interface{} `json:"input"`
}

type predictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error,omitempty"`
}

// predict runs one model synchronously via the Prefer: wait header and
// returns the output image URL.
func (g *Generator) predict(model string, input map[string]interface{}) (string, error) {
	if g.apiToken == "" {
		return "", fmt.Errorf("image generation is not configured")
	}

	jsonBody, err := json.Marshal(predictionRequest{Input: input})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", g.apiURL, model)
	req, err := http.NewRequest("POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiToken)
	req.Header.Set("Prefer", "wait")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var pred predictionResponse
	if err := json.Unmarshal(body, &pred); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if pred.Error != "" {
		return "", fmt.Errorf("prediction error: %s", pred.Error)
	}
	if pred.Status != "succeeded" {
		return "", fmt.Errorf("prediction finished with status %q", pred.Status)
	}

	return outputURL(pred.Output)
}

// outputURL handles both output shapes the models return: a bare string
// or an array of URLs.
func outputURL(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}
	return "", fmt.Errorf("prediction output has no image URL")
}

func (g *Generator) Stylize(photoURL string) (string, error) {
	return g.predict(stylizeModel, map[string]interface{}{
		"input_image": photoURL,
		"prompt":      stylizePrompt,
	})
}

func (g *Generator) RemoveBackground(imageURL string) (string, error) {
	return g.predict(removeBGModel, map[string]interface{}{
		"image": imageURL,
	})
}

type composeRequest struct {
	ImageURL string `json:"image_url"`
}

type composeResponse struct {
	ResultURL string `json:"result_url"`
	Error     string `json:"error,omitempty"`
}

// Compose places the cutout onto the festival frame. The composition
// itself lives in a separate service.
func (g *Generator) Compose(imageURL string) (string, error) {
	if g.composeURL == "" {
		// No composer deployed: ship the cutout as-is.
		return imageURL, nil
	}

	jsonBody, err := json.Marshal(composeRequest{ImageURL: imageURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", g.composeURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("compose request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("composer returned status %d: %s", resp.StatusCode, string(body))
	}

	var cr composeResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("failed to parse composer response: %w", err)
	}
	if cr.Error != "" {
		return "", fmt.Errorf("composer error: %s", cr.Error)
	}
	if cr.ResultURL == "" {
		return "", fmt.Errorf("composer returned no result")
	}
	return cr.ResultURL, nil
}

// PackName builds the deterministic per-chat pack name. Telegram
// requires the _by_<botUsername> suffix.
func (g *Generator) PackName(chatID int64) string {
	return fmt.Sprintf("fest_%d_by_%s", chatID, g.botUsername)
}

func packLink(name string) string {
	return "https://t.me/addstickers/" + name
}

func (g *Generator) CreatePack(chatID int64, assetURL string) (string, string, error) {
	name := g.PackName(chatID)
	title := "Фестивальный стикерпак"
	if len(title) > packTitleLimit {
		title = title[:packTitleLimit]
	}

	stickers := []telegram.InputSticker{{
		Sticker:   assetURL,
		Format:    "static",
		EmojiList: []string{packEmoji},
	}}
	if err := g.bot.CreateNewStickerSet(chatID, name, title, stickers); err != nil {
		if isPackTaken(err) {
			return "", "", fmt.Errorf("pack %s: %w", name, services.ErrPackExists)
		}
		return "", "", err
	}

	set, err := g.bot.GetStickerSet(name)
	if err != nil {
		return "", "", fmt.Errorf("pack created but not readable: %w", err)
	}
	fileID := ""
	if len(set.Stickers) > 0 {
		fileID = set.Stickers[0].FileID
	}
	return packLink(name), fileID, nil
}

// VerifyPack reports whether the deterministic pack already exists with
// content, so an "already taken" registration can be recovered.
func (g *Generator) VerifyPack(chatID int64) (string, bool, error) {
	name := g.PackName(chatID)
	set, err := g.bot.GetStickerSet(name)
	if err != nil {
		return "", false, err
	}
	if len(set.Stickers) == 0 {
		return "", false, nil
	}
	return packLink(name), true, nil
}

func isPackTaken(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already occupied") || strings.Contains(msg, "name is already")
}
