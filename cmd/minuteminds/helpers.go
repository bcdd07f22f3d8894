package main

import (
	"errors"
	"fmt"
	"strings"

	"minuteminds/internal/services"
)

// userError turns a service failure into the single human-readable line the
// CLI prints. Transport details never reach the user verbatim.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(services.Message(err))
}

// truncate shortens s to max characters. It counts runes so multibyte text
// is never cut mid-character.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func itemMarker(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
