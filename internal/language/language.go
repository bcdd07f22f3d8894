// Package language normalizes translation target codes and names them for
// display.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize resolves user input ("fr", "FR", "french") to a lowercase base
// language code. Unrecognized input returns an error.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", fmt.Errorf("language code is empty")
	}
	// Full language names ("french") are not BCP 47 tags, so match them
	// against display names before parsing.
	if len(trimmed) > 3 {
		if matched := byName(trimmed); matched != "" {
			return matched, nil
		}
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q", code)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

// DisplayName returns the English name for a language code, or the uppercased
// code when the name is unknown.
func DisplayName(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeList deduplicates and normalizes a list of codes, dropping any
// that do not resolve.
func NormalizeList(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		resolved, err := Normalize(code)
		if err != nil {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		normalized = append(normalized, resolved)
	}
	return normalized
}

// Supported reports whether code resolves to a member of the configured
// target set.
func Supported(code string, targets []string) bool {
	resolved, err := Normalize(code)
	if err != nil {
		return false
	}
	for _, target := range targets {
		if target == resolved {
			return true
		}
	}
	return false
}

func byName(name string) string {
	for _, tag := range display.Supported.Tags() {
		if strings.EqualFold(display.English.Tags().Name(tag), name) {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return ""
}
