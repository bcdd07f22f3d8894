// Package session owns authentication state: the stored bearer credential,
// the verified principal, and the lifecycle between them. State changes flow
// through exactly five operations (initialize, login, register, logout, and
// the forced invalidation path), so no other component can mutate the session.
package session
