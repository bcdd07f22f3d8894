// Package services provides the error classification and context annotation
// helpers shared by the gateway, session, and pipeline layers.
//
// Every failure crossing a component boundary is tagged with exactly one of
// the sentinel markers (precondition, auth, remote, transport) so callers can
// branch on classification without string matching, and resolved to a single
// user-facing message via Message.
package services
