// package services defines the interfaces for talking to music hosting platforms
//
// SoundCloud
package services

import (
	"context"
)

// CodeExchanger exchanges an OAuth authorization code for an access token.
type CodeExchanger interface {
	// ExchangeCode trades code for a token. An empty grantType means the authorization code grant.
	ExchangeCode(ctx context.Context, code, grantType string) (TokenResponse, error)
}

// OAuthService defines the operations of an OAuth-protected music API client.
type OAuthService interface {
	CodeExchanger

	// AuthorizeURL returns the URL the user visits to grant access. It makes no network call.
	AuthorizeURL() string

	// LoginWithCredentials performs the password grant for username and password.
	LoginWithCredentials(ctx context.Context, username, password string) (TokenResponse, error)

	// Get performs an authenticated GET for a resource path and returns the decoded JSON body.
	Get(ctx context.Context, path string, fields *Params) (any, error)

	// AccessToken returns the current session token, or "" when unauthenticated.
	AccessToken() string

	// SetAccessToken replaces the session token.
	SetAccessToken(token string)

	// Name returns the name of the service (e.g., "SoundCloud")
	Name() string
}

var _ OAuthService = (*SoundCloudService)(nil)
