// Package notify delivers assistant notifications (due reminders, receipt
// matches, overdue debts) to the messaging gateway webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RequestTimeout for webhook requests
const RequestTimeout = 10 * time.Second

// Notification kinds
const (
	KindReminder    = "reminder"
	KindReceiptLink = "receipt_link"
	KindDebtOverdue = "debt_overdue"
)

// Message is one notification to deliver to a user.
type Message struct {
	UserID string         `json:"user_id"`
	Kind   string         `json:"kind"`
	Title  string         `json:"title,omitempty"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}

// Response represents the gateway response.
type Response struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Notifier delivers messages to users.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
	SendBatch(ctx context.Context, messages []*Message) error
}

// Service sends notifications over the configured webhook.
type Service struct {
	client *http.Client
	logger *slog.Logger
	url    string
	token  string
}

// NewService creates a webhook notification service.
func NewService(webhookURL, authToken string, logger *slog.Logger) *Service {
	return &Service{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		logger: logger,
		url:    webhookURL,
		token:  authToken,
	}
}

// Send delivers a single notification.
func (s *Service) Send(ctx context.Context, msg *Message) error {
	if s.url == "" {
		return errors.New("webhook URL is not configured")
	}
	if msg.UserID == "" {
		return errors.New("user id is required")
	}
	if msg.Kind == "" {
		return errors.New("notification kind is required")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read notification response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("notification delivery failed",
			"status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("notification delivery failed with status: %d", resp.StatusCode)
	}

	var gw Response
	if err := json.Unmarshal(body, &gw); err != nil {
		s.logger.Error("failed to parse gateway response", "body", string(body), "error", err)
		return fmt.Errorf("failed to parse gateway response: %w", err)
	}

	if gw.Status == "error" {
		s.logger.Warn("gateway rejected notification", "error", gw.Message, "user", msg.UserID)
		return fmt.Errorf("gateway rejected notification: %s", gw.Message)
	}

	s.logger.Info("notification sent", "kind", msg.Kind, "user", msg.UserID)
	return nil
}

// SendBatch delivers multiple notifications, skipping malformed entries.
func (s *Service) SendBatch(ctx context.Context, messages []*Message) error {
	if len(messages) == 0 {
		return nil
	}
	if s.url == "" {
		return errors.New("webhook URL is not configured")
	}

	valid := make([]*Message, 0, len(messages))
	for _, msg := range messages {
		if msg.UserID != "" && msg.Kind != "" {
			valid = append(valid, msg)
		}
	}

	if len(valid) == 0 {
		return nil
	}

	payload, err := json.Marshal(valid)
	if err != nil {
		return fmt.Errorf("failed to marshal notifications: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notifications: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Error("notification batch failed", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("notification batch failed with status: %d", resp.StatusCode)
	}

	s.logger.Info("notification batch sent", "count", len(valid))
	return nil
}

// Nop is a Notifier that drops all messages. Used when no webhook is
// configured and in tests.
type Nop struct{}

func (Nop) Send(ctx context.Context, msg *Message) error             { return nil }
func (Nop) SendBatch(ctx context.Context, messages []*Message) error { return nil }
