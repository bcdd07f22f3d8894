package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLabelIsDeterministic(t *testing.T) {
	date := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	first := Label(date, "docx")
	second := Label(date, "docx")
	if first != second {
		t.Fatalf("labels differ: %q vs %q", first, second)
	}
	if first != "minutes_2026-03-14.docx" {
		t.Errorf("label = %q", first)
	}
	if got := Label(date, "pdf"); got != "minutes_2026-03-14.pdf" {
		t.Errorf("pdf label = %q", got)
	}
}

func TestSaveWritesPayload(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, "minutes_2026-03-14.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path = %q, want inside %q", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("payload = %q", data)
	}
}

func TestSaveRejectsEmptyPayload(t *testing.T) {
	if _, err := Save(t.TempDir(), "minutes.pdf", nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestRenderDocxProducesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minutes.docx")
	minutes := Minutes{
		Title:   "Weekly Sync",
		Date:    time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
		Summary: "We agreed on the release date.",
		Bullets: []string{"Release on Friday", "Ana owns the rollout"},
		Segments: []SegmentLine{
			{Start: 0, End: 4.5, Text: "Welcome everyone."},
			{Start: 4.5, End: 9, Text: "Let's talk about the release."},
		},
		Items: []ItemLine{
			{Text: "Ship the release", Assignee: "Ana", Done: false},
			{Text: "Update the changelog", Done: true},
		},
	}
	if err := RenderDocx(minutes, path); err != nil {
		t.Fatalf("RenderDocx() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("rendered document is empty")
	}
}
