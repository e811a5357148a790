package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"basiswatch/internal/application/port"

	"github.com/rs/zerolog/log"
)

// Telegram delivers alerts through the Bot API. Send reports success only;
// transport and API errors are logged and swallowed here so a flaky bot never
// breaks the monitoring loop.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		baseURL: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewTelegramWithBase is used by tests to point at a fake server.
func NewTelegramWithBase(baseURL, token, chatID string) *Telegram {
	t := NewTelegram(token, chatID)
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

type sendMessageResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (t *Telegram) Send(ctx context.Context, text string) bool {
	if t.token == "" || t.chatID == "" {
		log.Warn().Msg("telegram not configured, alert dropped")
		return false
	}

	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Error().Err(err).Msg("telegram request build failed")
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("telegram send failed")
		return false
	}
	defer resp.Body.Close()

	var body sendMessageResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Error().Err(err).Msg("telegram response decode failed")
		return false
	}
	if !body.OK {
		log.Error().Str("description", body.Description).Int("status", resp.StatusCode).Msg("telegram api error")
		return false
	}
	return true
}

var _ port.Notifier = (*Telegram)(nil)
