package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

// MaxMessageLength caps outbound SMS bodies; longer messages are cut
// and suffixed with "..."
const MaxMessageLength = 300

// minSendSpacing is the global floor between provider calls, shared
// across all messages regardless of recipient
const minSendSpacing = time.Second

// Message is one queued SMS
type Message struct {
	Phone string
	Body  string
}

// Dispatcher delivers SMS messages asynchronously. Enqueue never blocks
// and never surfaces delivery problems to callers; record-keeping must
// not fail because a guardian is unreachable.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger

	queue    chan Message
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopOnce sync.Once
	stopped  chan struct{}

	lastSend time.Time
}

// NewDispatcher starts the worker goroutine. queueSize bounds pending
// messages; when full, new messages are dropped with a log line.
func NewDispatcher(sender Sender, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}

	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		queue:   make(chan Message, queueSize),
		stopped: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// Enqueue normalizes the phone, truncates the body and queues the
// message. Invalid phones are logged and dropped.
func (d *Dispatcher) Enqueue(phone, body string) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		d.logger.Warn("skipping sms with invalid phone", "error", err)
		return
	}

	// The read lock keeps Shutdown from closing the queue between the
	// stopped check and the send
	d.mu.RLock()
	defer d.mu.RUnlock()

	select {
	case <-d.stopped:
		d.logger.Warn("sms dispatcher stopped, dropping message", "phone_suffix", suffix(normalized))
		return
	default:
	}

	select {
	case d.queue <- Message{Phone: normalized, Body: Truncate(body)}:
	default:
		d.logger.Warn("sms queue full, dropping message", "phone_suffix", suffix(normalized))
	}
}

// Shutdown stops accepting messages and waits for the queue to drain or
// the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		close(d.stopped)
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for msg := range d.queue {
		d.throttle()

		if err := d.sender.Send(msg.Phone, msg.Body); err != nil {
			// Best effort: log and move on, no retry
			d.logger.Error("sms delivery failed",
				"error", err,
				"phone_suffix", suffix(msg.Phone))
			continue
		}

		d.logger.Info("sms delivered", "phone_suffix", suffix(msg.Phone))
	}
}

// throttle enforces the global spacing between provider calls
func (d *Dispatcher) throttle() {
	if wait := minSendSpacing - time.Since(d.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-d.stopped:
		}
	}
	d.lastSend = time.Now()
}

// NormalizePhone converts a raw phone string to the canonical 10-digit
// local form: digits only, 98 country code and leading 0 dropped,
// leading 9 required.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "98") {
		digits = digits[2:]
	}
	digits = strings.TrimPrefix(digits, "0")
	if !strings.HasPrefix(digits, "9") {
		digits = "9" + digits
	}

	if len(digits) != 10 {
		return "", fmt.Errorf("phone does not normalize to 10 digits")
	}

	return digits, nil
}

// Truncate caps the body at MaxMessageLength runes
func Truncate(body string) string {
	runes := []rune(body)
	if len(runes) <= MaxMessageLength {
		return body
	}
	return string(runes[:MaxMessageLength-3]) + "..."
}

// suffix keeps logs free of full phone numbers
func suffix(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}
