package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"minuteminds/internal/services"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	got := truncate("a very long line of transcript text", 20)
	if len(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate long = %q", got)
	}
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	in := strings.Repeat("ü", 10)
	got := truncate(in, 8)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("ü", 5)+"..." {
		t.Errorf("truncate = %q", got)
	}
	if full := truncate(in, 10); full != in {
		t.Errorf("string at the limit was cut: %q", full)
	}
}

func TestItemMarker(t *testing.T) {
	if itemMarker(true) != "[x]" || itemMarker(false) != "[ ]" {
		t.Error("unexpected markers")
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(75.4); got != "01:15" {
		t.Errorf("formatClock(75.4) = %q", got)
	}
	if got := formatClock(0); got != "00:00" {
		t.Errorf("formatClock(0) = %q", got)
	}
}

func TestUserErrorHidesTransportDetail(t *testing.T) {
	err := services.Wrap(services.ErrTransport, "gateway", "ping", "", nil)
	if got := userError(err).Error(); strings.Contains(got, "gateway") {
		t.Errorf("userError leaks internals: %q", got)
	}
}

func TestRenderPlain(t *testing.T) {
	got := renderPlain([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}})
	want := "A\tB\n1\t2\n3\t4"
	if got != want {
		t.Errorf("renderPlain = %q, want %q", got, want)
	}
}
