// Package gateway implements the HTTP client for the minuteminds backend.
// It attaches the session credential to authenticated calls, classifies
// failures into the shared error taxonomy, and reports credential rejections
// through an auth-failure hook so the session layer can force a logout.
package gateway
