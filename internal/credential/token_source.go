package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// expiryDelta refreshes a cached token slightly before it lapses.
const expiryDelta = 30 * time.Second

type tokenSource struct {
	store    *Store
	override string
}

var _ oauth2.TokenSource = (*tokenSource)(nil)

// TokenSource reads the access token from override when set, otherwise from
// the keyring. Tokens are cached until the expiry claim in the JWT.
func (s *Store) TokenSource(override string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &tokenSource{store: s, override: override})
}

// StaticTokenSource wraps a raw token the same way TokenSource does.
func StaticTokenSource(raw string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &tokenSource{override: raw})
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	raw := ts.override
	if raw == "" {
		if ts.store == nil {
			return nil, ErrNoToken
		}
		var err error
		if raw, err = ts.store.Token(); err != nil {
			return nil, err
		}
	}

	token := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if exp, err := Expiry(raw); err == nil && !exp.IsZero() {
		token.Expiry = exp.Add(-expiryDelta)
		if time.Now().After(exp) {
			return nil, fmt.Errorf("access token expired at %s, log in again", exp.Format(time.RFC3339))
		}
	}
	return token, nil
}

// Expiry reads the exp claim without verifying the signature. The server
// verifies; the client only needs to know when to stop using the token.
func Expiry(raw string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Subject returns the user the token was issued to, unverified.
func Subject(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	return claims.Subject, nil
}
