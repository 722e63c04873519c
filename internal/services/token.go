package services

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenType is the authorization scheme SoundCloud expects in front of an access token.
const TokenType = "OAuth"

// TokenResponse is the parsed JSON object returned by the token endpoint, kept as-is.
//
// Typical keys are access_token, expires_in, scope and refresh_token, but nothing is validated.
type TokenResponse map[string]any

// AccessToken returns the access_token field when it is a non-empty string.
func (r TokenResponse) AccessToken() (string, bool) {
	token, ok := r["access_token"].(string)
	return token, ok && token != ""
}

// RefreshToken returns the refresh_token field, or "" when absent.
func (r TokenResponse) RefreshToken() string {
	token, _ := r["refresh_token"].(string)
	return token
}

// Scope returns the granted scope, or "" when absent.
func (r TokenResponse) Scope() string {
	scope, _ := r["scope"].(string)
	return scope
}

// ExpiresIn returns the token lifetime. Zero means the response carried none, as with non-expiring tokens.
func (r TokenResponse) ExpiresIn() time.Duration {
	switch v := r["expires_in"].(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	default:
		return 0
	}
}

// Token converts r into an [oauth2.Token] of type [TokenType], or nil when r has no access token.
//
// The raw response stays reachable through [oauth2.Token.Extra].
func (r TokenResponse) Token() *oauth2.Token {
	access, ok := r.AccessToken()
	if !ok {
		return nil
	}

	token := &oauth2.Token{
		AccessToken:  access,
		TokenType:    TokenType,
		RefreshToken: r.RefreshToken(),
	}
	if expiresIn := r.ExpiresIn(); expiresIn > 0 {
		token.Expiry = time.Now().Add(expiresIn)
		token.ExpiresIn = int64(expiresIn / time.Second)
	}

	return token.WithExtra(map[string]any(r))
}
