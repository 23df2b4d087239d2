package notifier

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Sender delivers a single SMS to one recipient
type Sender interface {
	Send(phone, body string) error
}

// HTTPSender posts messages to an SMS gateway
type HTTPSender struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

// NewHTTPSender builds the production sender. The 15 second timeout
// bounds a slow provider, not individual retries; there are none.
func NewHTTPSender(endpoint, apiKey, sender string) *HTTPSender {
	return &HTTPSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPSender) Send(phone, body string) error {
	form := url.Values{}
	form.Set("receptor", phone)
	form.Set("message", body)
	form.Set("sender", s.sender)

	endpoint := fmt.Sprintf("%s/%s/sms/send.json", strings.TrimRight(s.endpoint, "/"), s.apiKey)
	resp, err := s.client.PostForm(endpoint, form)
	if err != nil {
		return fmt.Errorf("sms provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	return nil
}

// MockSender logs messages instead of delivering them. Used when no API
// key is configured and in tests.
type MockSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewMockSender(logger *slog.Logger) *MockSender {
	return &MockSender{logger: logger}
}

func (s *MockSender) Send(phone, body string) error {
	s.mu.Lock()
	s.sent = append(s.sent, Message{Phone: phone, Body: body})
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("mock sms", "phone_suffix", suffix(phone), "body", body)
	}
	return nil
}

// Sent returns a copy of everything delivered so far
func (s *MockSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
