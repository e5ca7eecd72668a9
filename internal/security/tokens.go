package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Callers branch on these to produce distinct
// responses for expired, malformed, and otherwise invalid tokens.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrInvalidToken   = errors.New("invalid token")
)

// Claims holds the JWT claims shared by access and refresh tokens: the
// account identity plus the registered claim set.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenProvider issues and verifies HS256-signed access and refresh tokens
// using a shared secret. Access tokens are short-lived and stateless; refresh
// tokens are long-lived and tracked server-side by their hash.
type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. issuer and
// audience are set on claims and checked on verification.
func NewTokenProvider(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess issues a short-lived access token for the given account.
// Returns the signed token and its expiry time.
func (p *TokenProvider) IssueAccess(userID, email string) (string, time.Time, error) {
	return p.issue(userID, email, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh token for the given account.
// Returns the signed token and its expiry time. The caller must persist the
// token's hash for rotation and revocation.
func (p *TokenProvider) IssueRefresh(userID, email string) (string, time.Time, error) {
	return p.issue(userID, email, p.refreshTTL)
}

func (p *TokenProvider) issue(userID, email string, ttl time.Duration) (string, time.Time, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses and validates a token issued by this provider. It fails
// closed: signature mismatch, wrong issuer or audience, malformed structure,
// and expiry each reject the token, with ErrTokenExpired and ErrTokenMalformed
// distinguishing their cases from the generic ErrInvalidToken.
// Returns the account id and email carried by the token.
func (p *TokenProvider) Verify(tokenString string) (userID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", "", ErrTokenMalformed
		default:
			return "", "", ErrInvalidToken
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return "", "", ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Email, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
