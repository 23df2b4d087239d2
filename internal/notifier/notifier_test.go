package notifier

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "leading zero dropped", raw: "09123456789", want: "9123456789"},
		{name: "already canonical", raw: "9123456789", want: "9123456789"},
		{name: "separators stripped", raw: "0912-345 6789", want: "9123456789"},
		{name: "nine digits get the prefix", raw: "123456789", want: "9123456789"},
		{name: "country code stripped", raw: "+98 912-345-6789", want: "9123456789"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q) = %q, expected error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short body untouched", func(t *testing.T) {
		if got := Truncate("hello"); got != "hello" {
			t.Errorf("Truncate() = %q", got)
		}
	})

	t.Run("exact limit untouched", func(t *testing.T) {
		body := strings.Repeat("a", MaxMessageLength)
		if got := Truncate(body); got != body {
			t.Errorf("body at the limit should not change, got %d runes", len([]rune(got)))
		}
	})

	t.Run("long body cut with ellipsis", func(t *testing.T) {
		got := Truncate(strings.Repeat("a", MaxMessageLength+50))
		runes := []rune(got)
		if len(runes) != MaxMessageLength {
			t.Fatalf("expected %d runes, got %d", MaxMessageLength, len(runes))
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected trailing ellipsis, got %q", got[len(got)-5:])
		}
	})

	t.Run("multibyte body counted in runes", func(t *testing.T) {
		got := Truncate(strings.Repeat("م", MaxMessageLength+10))
		if len([]rune(got)) != MaxMessageLength {
			t.Errorf("expected %d runes, got %d", MaxMessageLength, len([]rune(got)))
		}
	})
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := NewMockSender(testLogger())
	dispatcher := NewDispatcher(sender, 8, testLogger())

	dispatcher.Enqueue("09123456789", "Ali was absent today")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := dispatcher.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(sent))
	}
	if sent[0].Phone != "9123456789" {
		t.Errorf("phone not normalized before delivery: %q", sent[0].Phone)
	}
	if sent[0].Body != "Ali was absent today" {
		t.Errorf("unexpected body %q", sent[0].Body)
	}
}

func TestDispatcher_EnqueueAfterShutdownIsDropped(t *testing.T) {
	sender := NewMockSender(testLogger())
	dispatcher := NewDispatcher(sender, 8, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := dispatcher.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	// Must not panic on the closed queue
	dispatcher.Enqueue("09123456789", "too late")

	if sent := sender.Sent(); len(sent) != 0 {
		t.Errorf("messages after shutdown must be dropped, got %+v", sent)
	}
}

func TestDispatcher_DropsInvalidPhones(t *testing.T) {
	sender := NewMockSender(testLogger())
	dispatcher := NewDispatcher(sender, 8, testLogger())

	dispatcher.Enqueue("12", "unreachable guardian")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := dispatcher.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if sent := sender.Sent(); len(sent) != 0 {
		t.Errorf("invalid phone must be dropped, got %+v", sent)
	}
}
