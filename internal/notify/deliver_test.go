package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendPostsJSONPayload(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	msg, err := Compose("g1", snapshot(), viewURL)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if err := NewWebhookSender().Send(context.Background(), srv.URL, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Summary != msg.Summary {
		t.Errorf("summary = %q, want %q", got.Summary, msg.Summary)
	}
	if len(got.Sections) != len(msg.Sections) {
		t.Errorf("sections = %d, want %d", len(got.Sections), len(msg.Sections))
	}
}

func TestSendNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewWebhookSender().Send(context.Background(), srv.URL, &Message{Summary: "hi"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := NewWebhookSender().Send(context.Background(), srv.URL, &Message{Summary: "hi"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}
