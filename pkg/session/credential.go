// Package session implements the bearer-credential lifecycle: a single
// persisted credential record, a validity predicate over it, and a manager
// that exposes the token to callers and retires it when it expires.
package session

import "time"

// StorageKey is the well-known key the credential record lives under in
// key-value media that address records by name (redis).
const StorageKey = "portfolio:session:credential"

// Credential is the persisted record for one issued bearer token. Both
// instants are epoch milliseconds; the token embeds them in seconds and the
// decoder converts before storage.
type Credential struct {
	AccessToken     string `json:"access_token"`
	NotBeforeMillis int64  `json:"not_before_ms"`
	ExpiresAtMillis int64  `json:"expires_at_ms"`
}

// ActiveAt reports whether the credential is usable at the given instant.
// The validity window is half-open: active exactly at NotBeforeMillis,
// inactive exactly at ExpiresAtMillis.
func (c Credential) ActiveAt(nowMillis int64) bool {
	return nowMillis >= c.NotBeforeMillis && nowMillis < c.ExpiresAtMillis
}

// ExpiresIn returns the duration until the credential expires relative to
// now. Negative when already expired.
func (c Credential) ExpiresIn(now time.Time) time.Duration {
	return time.Duration(c.ExpiresAtMillis-now.UnixMilli()) * time.Millisecond
}
