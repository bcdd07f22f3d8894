// Package notify pushes phone notifications about pipeline milestones
// through ntfy. Without a configured topic every call is a noop.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"minuteminds/internal/config"
)

const userAgent = "minuteminds/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyTranscribed(ctx context.Context, filename string, segments int) error
	NotifySummarized(ctx context.Context, bullets int) error
	NotifyExported(ctx context.Context, label string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyTranscribed(ctx context.Context, filename string, segments int) error {
	data := payload{
		title:   "Minuteminds - Transcribed",
		message: fmt.Sprintf("Transcription complete: %s (%d segments)", strings.TrimSpace(filename), segments),
		tags:    []string{"minuteminds", "transcribe", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySummarized(ctx context.Context, bullets int) error {
	data := payload{
		title:   "Minuteminds - Summarized",
		message: fmt.Sprintf("Summary ready with %d bullet points", bullets),
		tags:    []string{"minuteminds", "summarize", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExported(ctx context.Context, label string) error {
	data := payload{
		title:    "Minuteminds - Exported",
		message:  fmt.Sprintf("Minutes exported: %s", strings.TrimSpace(label)),
		tags:     []string{"minuteminds", "export", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Minuteminds - Error",
		message:  builder.String(),
		tags:     []string{"minuteminds", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Minuteminds - Test",
		message:  "Notification system test",
		tags:     []string{"minuteminds", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTranscribed(context.Context, string, int) error { return nil }
func (noopService) NotifySummarized(context.Context, int) error          { return nil }
func (noopService) NotifyExported(context.Context, string) error         { return nil }
func (noopService) NotifyError(context.Context, error, string) error     { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
