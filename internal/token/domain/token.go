package domain

import "time"

// RefreshToken is one issued refresh token tracked for an account. The raw
// token never touches storage; TokenHash is its SHA-256 form. RevokedAt is
// monotonic: once set it is never cleared.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	Device    string // optional client-supplied label
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil when not revoked
}

// Active reports whether the record is usable at the given instant: not
// revoked and not past expiry. Expired-but-unrevoked records are inert.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
