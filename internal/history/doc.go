// Package history lists past transcriptions, backed by a disposable SQLite
// cache that keeps the listing available when the backend is down.
package history
