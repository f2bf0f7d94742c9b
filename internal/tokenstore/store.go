package tokenstore

import (
	"context"
	"errors"
	"time"

	"jobportal/internal/auth"
)

// Key is the fixed name under which the bearer token is persisted.
const Key = "token"

var ErrExpired = errors.New("tokenstore: token already expired")

// Store persists one bearer token across restarts.
// Load returns "" and a nil error when nothing is stored.
// Clear on an empty store is a no-op.
// ClearIf removes the stored token only while it still equals token, so a
// failure on an old token never erases a newer one saved by another writer.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	ClearIf(ctx context.Context, token string) error
}

// Factory hands out stores scoped to one browser session.
type Factory interface {
	Scope(sessionID string) Store
}

// lifetime is how long token may be kept: until its exp claim, capped by
// maxTTL. Opaque tokens get maxTTL. A zero maxTTL means no cap.
func lifetime(token string, maxTTL time.Duration) (time.Duration, error) {
	exp, ok, err := auth.ExpiryFromToken(token)
	if err != nil || !ok {
		return maxTTL, nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return 0, ErrExpired
	}
	if maxTTL > 0 && ttl > maxTTL {
		ttl = maxTTL
	}
	return ttl, nil
}
