package credential

import (
	"errors"
	"testing"
	"time"

	"github.com/99designs/keyring"

	"github.com/garrettladley/medibook/internal/service/token"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStore(keyring.NewArrayKeyring(nil))

	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("Token() on empty store error = %v, want ErrNoToken", err)
	}

	if err := s.SetToken("abc"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	got, err := s.Token()
	if err != nil || got != "abc" {
		t.Fatalf("Token() = %q, %v; want abc", got, err)
	}

	if err := s.DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if err := s.DeleteToken(); err != nil {
		t.Fatalf("second DeleteToken() error = %v", err)
	}
	if _, err := s.Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() after delete error = %v, want ErrNoToken", err)
	}
}

func TestTokenSource(t *testing.T) {
	t.Parallel()

	issuer := token.NewJWT(token.Config{Secret: "s", TTL: time.Hour})
	signed, err := issuer.Issue("patient-7")
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore(keyring.NewArrayKeyring(nil))
	if err := s.SetToken(signed); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{name: "keyring", want: signed},
		{name: "override wins", override: "opaque-token", want: "opaque-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tok, err := s.TokenSource(tt.override).Token()
			if err != nil {
				t.Fatalf("Token() error = %v", err)
			}
			if tok.AccessToken != tt.want {
				t.Errorf("AccessToken = %q, want %q", tok.AccessToken, tt.want)
			}
		})
	}

	tok, err := s.TokenSource("").Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Expiry.IsZero() || time.Until(tok.Expiry) > time.Hour {
		t.Errorf("Expiry = %v, want within the hour", tok.Expiry)
	}

	sub, err := Subject(signed)
	if err != nil || sub != "patient-7" {
		t.Errorf("Subject() = %q, %v; want patient-7", sub, err)
	}
}

func TestTokenSourceNotLoggedIn(t *testing.T) {
	t.Parallel()

	_, err := NewStore(keyring.NewArrayKeyring(nil)).TokenSource("").Token()
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() error = %v, want ErrNoToken", err)
	}
}
