package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

func NewClient(token string) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 65 * time.Second},
		baseURL:    fmt.Sprintf("https://api.telegram.org/bot%s", token),
	}
}

func (c *Client) Token() string { return c.token }

// SendText is the plain-message form used by broadcast delivery.
func (c *Client) SendText(chatID int64, text string) error {
	_, err := c.SendMessage(chatID, text, "HTML", nil)
	return err
}

func (c *Client) call(method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/"+method, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(data, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("telegram: %s", apiResp.Description)
	}

	return apiResp.Result, nil
}

func (c *Client) SendMessage(chatID int64, text, parseMode string, replyMarkup interface{}) (int64, error) {
	req := SendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             parseMode,
		DisableWebPagePreview: true,
	}

	if replyMarkup != nil {
		rm, err := json.Marshal(replyMarkup)
		if err != nil {
			return 0, err
		}
		req.ReplyMarkup = rm
	}

	result, err := c.call("sendMessage", req)
	if err != nil {
		return 0, err
	}

	var msg MessageResult
	json.Unmarshal(result, &msg)
	return msg.MessageID, nil
}

func (c *Client) SendPhoto(chatID int64, photoURL, caption, parseMode string, replyMarkup interface{}) (int64, error) {
	req := SendPhotoRequest{
		ChatID:    chatID,
		Photo:     photoURL,
		Caption:   caption,
		ParseMode: parseMode,
	}

	if replyMarkup != nil {
		rm, err := json.Marshal(replyMarkup)
		if err != nil {
			return 0, err
		}
		req.ReplyMarkup = rm
	}

	result, err := c.call("sendPhoto", req)
	if err != nil {
		return 0, err
	}

	var msg MessageResult
	json.Unmarshal(result, &msg)
	return msg.MessageID, nil
}

func (c *Client) EditMessageText(chatID, messageID int64, text, parseMode string, replyMarkup interface{}) error {
	req := EditMessageTextRequest{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: parseMode,
	}

	if replyMarkup != nil {
		rm, err := json.Marshal(replyMarkup)
		if err != nil {
			return err
		}
		req.ReplyMarkup = rm
	}

	_, err := c.call("editMessageText", req)
	return err
}

func (c *Client) AnswerCallbackQuery(callbackID, text string, showAlert bool) error {
	req := AnswerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       showAlert,
	}
	_, err := c.call("answerCallbackQuery", req)
	return err
}

func (c *Client) SetWebhook(url, secretToken string) error {
	req := SetWebhookRequest{
		URL:            url,
		SecretToken:    secretToken,
		AllowedUpdates: []string{"message", "callback_query"},
	}
	_, err := c.call("setWebhook", req)
	return err
}

func (c *Client) DeleteWebhook() error {
	_, err := c.call("deleteWebhook", struct{}{})
	return err
}

func (c *Client) GetUpdates(offset int64, timeout int) ([]Update, error) {
	req := GetUpdatesRequest{
		Offset:         offset,
		Timeout:        timeout,
		AllowedUpdates: []string{"message", "callback_query"},
	}
	result, err := c.call("getUpdates", req)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("unmarshal updates: %w", err)
	}
	return updates, nil
}

// FileURL resolves a file_id to a directly downloadable URL.
func (c *Client) FileURL(fileID string) (string, error) {
	result, err := c.call("getFile", struct {
		FileID string `json:"file_id"`
	}{FileID: fileID})
	if err != nil {
		return "", err
	}

	var f File
	if err := json.Unmarshal(result, &f); err != nil {
		return "", fmt.Errorf("unmarshal file: %w", err)
	}
	return fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", c.token, f.FilePath), nil
}

func (c *Client) GetMe() (*User, error) {
	result, err := c.call("getMe", struct{}{})
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(result, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (c *Client) CreateNewStickerSet(userID int64, name, title string, stickers []InputSticker) error {
	req := CreateNewStickerSetRequest{
		UserID:   userID,
		Name:     name,
		Title:    title,
		Stickers: stickers,
	}
	_, err := c.call("createNewStickerSet", req)
	return err
}

func (c *Client) GetStickerSet(name string) (*StickerSet, error) {
	result, err := c.call("getStickerSet", GetStickerSetRequest{Name: name})
	if err != nil {
		return nil, err
	}

	var set StickerSet
	if err := json.Unmarshal(result, &set); err != nil {
		return nil, fmt.Errorf("unmarshal sticker set: %w", err)
	}
	return &set, nil
}
