package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadflow/internal/interfaces"
)

const whatsappAPIBase = "https://graph.facebook.com/v18.0"

// WhatsAppBusinessClient sends text messages through the WhatsApp Business
// Cloud API. Inbound traffic is out of scope; replies are logged manually
// as interactions.
type WhatsAppBusinessClient struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

var _ interfaces.Messenger = (*WhatsAppBusinessClient)(nil)

func NewWhatsAppBusinessClient(accessToken, phoneNumberID string) *WhatsAppBusinessClient {
	return &WhatsAppBusinessClient{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		baseURL:       whatsappAPIBase,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// SendText posts a text message to the lead's phone number in E.164 form.
func (w *WhatsAppBusinessClient) SendText(ctx context.Context, to, content string) error {
	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneNumberID)
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": content,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp send to %s: status %d: %s", to, resp.StatusCode, string(body))
	}
	return nil
}
