package smsgateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(msisdn, message string) (string, error)
}

// HTTPGateway delivers SMS through a JSON-over-HTTP provider
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	SenderID   string
	httpClient *http.Client
}

// MockGateway logs instead of sending, for local development and tests
type MockGateway struct{}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey, senderID string) Gateway {
	return &HTTPGateway{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		SenderID: senderID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() Gateway {
	return &MockGateway{}
}

// SendSMS sends an SMS through the provider and returns its message id
func (g *HTTPGateway) SendSMS(msisdn, message string) (string, error) {
	payload := map[string]string{
		"to":      msisdn,
		"from":    g.SenderID,
		"message": message,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.BaseURL+"/v1/messages", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("SMS provider returned status %d", resp.StatusCode)
	}

	var result struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode SMS response: %w", err)
	}
	return result.MessageID, nil
}

// SendSMS logs the message and returns a generated id
func (g *MockGateway) SendSMS(msisdn, message string) (string, error) {
	id := uuid.New().String()
	slog.Info("MOCK SMS", "msisdn", msisdn, "messageId", id, "message", message)
	return id, nil
}
