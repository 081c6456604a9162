package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultResendURL = "https://api.resend.com"

// ResendTransport delivers mail through the Resend HTTP API.
type ResendTransport struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewResendTransport returns a transport using apiKey. An empty baseURL means
// the public API.
func NewResendTransport(apiKey, baseURL string) *ResendTransport {
	if baseURL == "" {
		baseURL = defaultResendURL
	}
	return &ResendTransport{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *ResendTransport) Name() string { return "resend" }

// ─── RESEND API SHAPES ────────────────────────────────────────────────────────

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Resend reports failures as a flat object on non-2xx responses.
type resendError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// ─── TRANSPORT IMPLEMENTATION ─────────────────────────────────────────────────

func (c *ResendTransport) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(resendRequest{
		From:    msg.From.String(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("email: marshal request: %w", err)
	}

	respBytes, err := c.do(ctx, http.MethodPost, "/emails", body)
	if err != nil {
		return "", err
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("email: unmarshal response: %w", err)
	}
	return parsed.ID, nil
}

// Verify lists domains to check the key. A send-only key is rejected with
// restricted_api_key, which still proves the key is valid.
func (c *ResendTransport) Verify(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/domains", nil)
	var apiErr *ResendAPIError
	if errors.As(err, &apiErr) && apiErr.Name == "restricted_api_key" {
		return nil
	}
	return err
}

// ResendAPIError is a non-2xx answer from Resend.
type ResendAPIError struct {
	Status  int
	Name    string
	Message string
}

func (e *ResendAPIError) Error() string {
	return fmt.Sprintf("email: Resend error %d %s: %s", e.Status, e.Name, e.Message)
}

// ─── HTTP ─────────────────────────────────────────────────────────────────────

func (c *ResendTransport) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("email: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("email: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e resendError
		if json.Unmarshal(respBytes, &e) == nil && e.Name != "" {
			return nil, &ResendAPIError{Status: resp.StatusCode, Name: e.Name, Message: e.Message}
		}
		return nil, &ResendAPIError{Status: resp.StatusCode, Message: fmt.Sprintf("%.200s", string(respBytes))}
	}
	return respBytes, nil
}
