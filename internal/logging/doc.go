// Package logging wires slog handlers (console and JSON) with standardized
// field names and context-derived attributes for the minuteminds client.
package logging
