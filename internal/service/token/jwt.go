package token

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultIssuer = "medibook"

type Config struct {
	Secret string        `env:"SECRET,required"`
	Issuer string        `env:"ISSUER" envDefault:"medibook"`
	TTL    time.Duration `env:"TTL" envDefault:"720h"`
}

// JWT issues and validates HS256 tokens whose subject is the user id.
type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

var _ Service = (*JWT)(nil)

func NewJWT(cfg Config) *JWT {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &JWT{
		secret: []byte(cfg.Secret),
		issuer: issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Issue mints a token for userID. A zero TTL mints a token that never expires.
func (j *JWT) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}

	now := j.now()
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  userID,
		Issuer:   j.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if j.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (j *JWT) ValidateAndGetUserID(_ context.Context, authHeader string) (string, error) {
	raw, err := extractBearerToken(authHeader)
	if err != nil {
		return "", err
	}

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}

	const prefix = "Bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", ErrInvalidToken
	}

	token := strings.TrimSpace(authHeader[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
