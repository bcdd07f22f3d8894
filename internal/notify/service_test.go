package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"minuteminds/internal/config"
)

func TestNoopWithoutTopic(t *testing.T) {
	svc := NewService(&config.Config{})
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Errorf("noop returned error: %v", err)
	}
}

func TestNtfySendSetsHeaders(t *testing.T) {
	var gotTitle, gotTags, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(cfg)

	if err := svc.NotifyExported(context.Background(), "minutes_2026-03-14.docx"); err != nil {
		t.Fatalf("NotifyExported() error: %v", err)
	}
	if gotTitle != "Minuteminds - Exported" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotTags != "minuteminds,export,completed" {
		t.Errorf("tags = %q", gotTags)
	}
	if gotBody != "Minutes exported: minutes_2026-03-14.docx" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNtfySendSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic locked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
