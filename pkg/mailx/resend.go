package mailx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultResendURL is the Resend send endpoint.
const DefaultResendURL = "https://api.resend.com/emails"

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
}

// NewResendSender returns a sender for the public Resend API.
func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{
		APIKey:     apiKey,
		Endpoint:   DefaultResendURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mailx: provider returned %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return "", fmt.Errorf("mailx: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("mailx: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailx: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("mailx: read response: %w", err)
	}

	var decoded resendResponse
	_ = json.Unmarshal(raw, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode, Name: decoded.Name, Message: decoded.Message}
		if perr.Message == "" {
			perr.Message = strings.TrimSpace(string(raw))
		}
		return "", perr
	}

	return decoded.ID, nil
}
