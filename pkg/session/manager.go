package session

import (
	"context"
	"time"
)

// Manager composes a Store and a Decoder into the auth surface the rest of
// the application uses: set/remove the token, read the bearer value or the
// current identity, and register an expiry-driven logout callback.
//
// Every failure path degrades to "not authenticated"; only SetAuthToken
// surfaces errors, since storing an undecodable token would corrupt the
// record's time fields.
type Manager struct {
	store   Store
	decoder Decoder
	now     func() time.Time
	dog     watchdog
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a manager over the given store and decoder.
func NewManager(store Store, decoder Decoder, opts ...Option) *Manager {
	m := &Manager{store: store, decoder: decoder, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAuthToken decodes the raw bearer string and persists it together with
// its validity window. Each call fully replaces the previous record.
func (m *Manager) SetAuthToken(ctx context.Context, raw string) error {
	decoded, err := m.decoder.Decode(raw)
	if err != nil {
		return err
	}
	return m.store.Save(ctx, Credential{
		AccessToken:     raw,
		NotBeforeMillis: decoded.IssuedAt * 1000,
		ExpiresAtMillis: decoded.ExpiresAt * 1000,
	})
}

// RemoveAuthToken deletes the stored record. Removing an absent record is
// not an error.
func (m *Manager) RemoveAuthToken(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// AccessToken returns the stored token when it is currently active, and the
// empty string otherwise. Callers use the value directly as a header
// fragment.
func (m *Manager) AccessToken(ctx context.Context) string {
	cred, err := m.store.Read(ctx)
	if err != nil || cred == nil {
		return ""
	}
	if !cred.ActiveAt(m.now().UnixMilli()) {
		return ""
	}
	return cred.AccessToken
}

// IsActive reports whether an active credential is currently stored.
func (m *Manager) IsActive(ctx context.Context) bool {
	cred, err := m.store.Read(ctx)
	if err != nil || cred == nil {
		return false
	}
	return cred.ActiveAt(m.now().UnixMilli())
}

// CurrentUser returns the identity embedded in the stored token when it is
// active. An inactive, absent, or undecodable record yields nil, and a stale
// record is evicted as a side effect, so stale state is collected even when
// the expiry watchdog never fires.
func (m *Manager) CurrentUser(ctx context.Context) *Identity {
	cred, err := m.store.Read(ctx)
	if err != nil || cred == nil {
		return nil
	}
	if !cred.ActiveAt(m.now().UnixMilli()) {
		_ = m.store.Clear(ctx)
		return nil
	}

	decoded, err := m.decoder.Decode(cred.AccessToken)
	if err != nil {
		_ = m.store.Clear(ctx)
		return nil
	}
	identity := decoded.Identity
	return &identity
}

// SetLogoutIfExpiredHandler arms a one-shot timer against the currently
// stored credential. When the token's expiry is reached the record is
// cleared and onLogout is invoked with a nil identity. Re-registering
// cancels any previously armed timer; with no record stored, no timer is
// armed. The callback runs on its own goroutine after this call returns.
func (m *Manager) SetLogoutIfExpiredHandler(ctx context.Context, onLogout func(*Identity)) error {
	m.dog.cancel()

	cred, err := m.store.Read(ctx)
	if err != nil {
		return err
	}
	if cred == nil {
		return nil
	}

	m.dog.arm(cred.ExpiresIn(m.now()), func() {
		// The record may already be gone (explicit logout); clearing an
		// empty store is a no-op and the nil-identity callback is
		// idempotent.
		_ = m.store.Clear(context.Background())
		onLogout(nil)
	})
	return nil
}

// Close cancels any armed expiry timer. Call on teardown so a stale callback
// cannot fire against a newer token.
func (m *Manager) Close() {
	m.dog.cancel()
}
