package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunCompletedPayload_Format(t *testing.T) {
	payload := NewRunCompletedPayload("a1b2c3d4", "gen3ou", "2025-05-30..2025-06-01", 47832, 3*time.Minute+12*time.Second)

	if len(payload.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]

	if embed.Color != colorGreen {
		t.Errorf("Expected green color, got %d", embed.Color)
	}
	if len(embed.Fields) != 4 {
		t.Fatalf("Expected 4 fields, got %d", len(embed.Fields))
	}
	if embed.Fields[2].Name != "Rows" || embed.Fields[2].Value != "47,832" {
		t.Errorf("Unexpected rows field: %+v", embed.Fields[2])
	}
	if embed.Fields[3].Value != "3m 12s" {
		t.Errorf("Unexpected duration field: %+v", embed.Fields[3])
	}
	if embed.Footer == nil || embed.Footer.Text != "run a1b2c3d4" {
		t.Errorf("Unexpected footer: %+v", embed.Footer)
	}
}

func TestRunFailedPayload_Format(t *testing.T) {
	payload := NewRunFailedPayload("a1b2c3d4", "gen3ou", "2025-05-30..2025-06-01", errors.New("boom"))

	if len(payload.Embeds) != 1 {
		t.Fatalf("Expected 1 embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]
	if embed.Color != colorRed {
		t.Errorf("Expected red color, got %d", embed.Color)
	}
	if embed.Description != "boom" {
		t.Errorf("Expected error in description, got %q", embed.Description)
	}
}

func TestSend_PostsJSON(t *testing.T) {
	var received WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL)
	payload := NewRunCompletedPayload("a1b2c3d4", "gen3ou", "2025-05-30..2025-06-01", 3, time.Second)

	if err := client.Send(context.Background(), payload); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(received.Embeds) != 1 || received.Embeds[0].Title != "Replay fetch complete" {
		t.Errorf("Server received unexpected payload: %+v", received)
	}
}

// TestSend_RetriesRateLimit waits out a 429 and delivers on the second
// attempt
func TestSend_RetriesRateLimit(t *testing.T) {
	var attempts int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL)
	if err := client.Send(context.Background(), WebhookPayload{Content: "hi"}); err != nil {
		t.Fatalf("Expected rate-limited send to recover, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestSend_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWebhookClient(server.URL)
	if err := client.Send(context.Background(), WebhookPayload{Content: "hi"}); err == nil {
		t.Error("Expected an error for a failing webhook")
	}
}

// TestSend_EmptyURLIsNoop keeps notifications optional
func TestSend_EmptyURLIsNoop(t *testing.T) {
	client := NewWebhookClient("")
	if err := client.Send(context.Background(), WebhookPayload{Content: "hi"}); err != nil {
		t.Errorf("Expected no-op for empty URL, got: %v", err)
	}
}
