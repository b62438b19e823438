package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/cafienne/engine-contract-tests/client"
)

// DefaultTokenValidity is how long tokens stay valid unless asked otherwise.
const DefaultTokenValidity = 48 * time.Hour

// Claims are sent to the token service, which signs them into a JWT. Times are in
// seconds since the epoch.
type Claims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// TokenService fetches tokens from a development identity provider that signs whatever
// claims it receives.
type TokenService struct {
	URL      string
	Issuer   string
	Validity time.Duration
	Client   *client.Client
	Now      func() time.Time
}

// Token fetches a token for the user, issued now and valid for the configured period.
func (s *TokenService) Token(ctx context.Context, user *User) (string, error) {
	issuedAt := s.now()
	validity := s.Validity
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return s.TokenFor(ctx, user, issuedAt, issuedAt.Add(validity))
}

// TokenFor fetches a token with explicit timestamps, so that tests can make expired or
// not yet valid tokens.
func (s *TokenService) TokenFor(ctx context.Context, user *User, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		Issuer:    s.Issuer,
		Subject:   user.UserID(),
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	resp, err := s.Client.Do(ctx, client.Request{Method: "POST", Path: s.URL, Body: claims})
	if err != nil {
		return "", fmt.Errorf("failure in fetching token: %w", err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("failure in fetching token: %d %s\n%s", resp.Status, resp.StatusText, resp.Text())
	}
	return resp.Text(), nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
