// SoundCloud API implementation of [OAuthService]
//
// Endpoints based on https://developers.soundcloud.com/docs/api/guide#authentication
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	soundcloudHost = "soundcloud.com"
	connectPath    = "connect"
	tokenPath      = "oauth2/token"

	GrantTypePassword          = "password"
	GrantTypeAuthorizationCode = "authorization_code"
)

// SoundCloudService implements [OAuthService] against the SoundCloud API.
//
// Credentials are fixed at construction. The access token and the last request URL are session state owned by
// the instance; use one instance per logical session, it is not safe for concurrent use.
type SoundCloudService struct {
	clientID     string
	clientSecret string
	redirectURL  string

	httpClient *http.Client
	headers    http.Header
	logger     *log.Logger

	params     *Params
	requestURL string
	token      *oauth2.Token
}

// Option configures a [SoundCloudService].
type Option func(*SoundCloudService)

// WithHTTPClient replaces the default [http.Client].
func WithHTTPClient(client *http.Client) Option {
	return func(s *SoundCloudService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *log.Logger) Option {
	return func(s *SoundCloudService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSoundCloudService creates a SoundCloud client for the given application credentials.
//
// No network call is made.
func NewSoundCloudService(clientID, clientSecret, redirectURL string, opts ...Option) *SoundCloudService {
	s := &SoundCloudService{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   http.DefaultClient,
		headers:      http.Header{"Accept": []string{"application/json"}},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	return s
}

func (s *SoundCloudService) Name() string {
	return "SoundCloud"
}

// AuthorizeURL returns the browser-facing URL where the user grants access to the application.
//
// The client secret is never part of it.
func (s *SoundCloudService) AuthorizeURL() string {
	s.buildRequest(NewParams(
		"scope", "non-expiring",
		"display", "popup",
		"response_type", "code",
	), "client_secret")

	s.buildRequestURL(connectPath)

	return s.requestURL
}

// LoginWithCredentials exchanges a user's username and password for an access token (password grant).
//
// On success the access token is kept for later calls and the full response is returned.
func (s *SoundCloudService) LoginWithCredentials(ctx context.Context, username, password string) (TokenResponse, error) {
	s.buildRequest(NewParams(
		"username", username,
		"password", password,
		"grant_type", GrantTypePassword,
	), "redirect_uri")

	s.buildRequestURL(tokenPath)

	return s.requestToken(ctx)
}

// ExchangeCode exchanges an authorization code for an access token.
//
// An empty grantType means [GrantTypeAuthorizationCode].
func (s *SoundCloudService) ExchangeCode(ctx context.Context, code, grantType string) (TokenResponse, error) {
	if grantType == "" {
		grantType = GrantTypeAuthorizationCode
	}

	s.buildRequest(NewParams(
		"grant_type", grantType,
		"code", code,
	))

	s.buildRequestURL(tokenPath)

	return s.requestToken(ctx)
}

// Get performs an authenticated GET against https://api.soundcloud.com/<path>, sending fields as the query string.
//
// A query string inside path is merged ahead of fields. The client id travels with every call; the secret and
// redirect URI never do.
func (s *SoundCloudService) Get(ctx context.Context, path string, fields *Params) (any, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: path %q: %v", shared.ErrInvalidArgument, path, err)
	}
	if u.IsAbs() || u.Host != "" {
		return nil, fmt.Errorf("%w: %q must be a path relative to the api host", shared.ErrInvalidArgument, path)
	}
	if u.RawQuery != "" {
		query, err := ParseParams(u.RawQuery)
		if err != nil {
			return nil, fmt.Errorf("%w: path %q: %v", shared.ErrInvalidArgument, path, err)
		}
		fields = query.Merge(fields)
	}

	path = strings.TrimPrefix(u.EscapedPath(), "/")
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", shared.ErrMissingArgument)
	}
	if strings.Contains(path, connectPath) {
		return nil, fmt.Errorf("%w: %q is a browser endpoint, use AuthorizeURL", shared.ErrInvalidArgument, path)
	}

	s.buildRequest(fields, "client_secret", "redirect_uri")
	s.buildRequestURL(path)

	return s.doRequest(ctx, http.MethodGet)
}

// AccessToken returns the session access token, or "" before any successful exchange.
func (s *SoundCloudService) AccessToken() string {
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// SetAccessToken replaces the session access token. An empty token clears it.
func (s *SoundCloudService) SetAccessToken(token string) {
	if token == "" {
		s.token = nil
		return
	}
	s.setToken(&oauth2.Token{AccessToken: token, TokenType: TokenType})
}

// RequestURL returns the URL computed for the most recent call.
func (s *SoundCloudService) RequestURL() string {
	return s.requestURL
}

func (s *SoundCloudService) setToken(token *oauth2.Token) {
	s.token = token
}

func (s *SoundCloudService) requestToken(ctx context.Context) (TokenResponse, error) {
	result, err := s.doRequest(ctx, http.MethodPost)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return TokenResponse{}, nil
	}

	obj, ok := result.(map[string]any)
	if !ok {
		return nil, requestFailed("token response is not a JSON object")
	}

	resp := TokenResponse(obj)
	if token := resp.Token(); token != nil {
		s.setToken(token)
	} else {
		s.logger.Warn("token response has no access_token", "keys", len(resp))
	}

	return resp, nil
}

// buildRequest assembles the request parameters: credentials first, then fields, minus skip.
func (s *SoundCloudService) buildRequest(fields *Params, skip ...string) {
	s.params = NewParams(
		"client_id", s.clientID,
		"client_secret", s.clientSecret,
		"redirect_uri", s.redirectURL,
	).Merge(fields).Except(skip...)
}

// buildRequestURL computes the request URL for path.
//
// The authorization endpoint lives on the bare web host and carries the parameters in its query string;
// every other path targets the api. subdomain without a query string.
func (s *SoundCloudService) buildRequestURL(path string) {
	isConnect := strings.Contains(path, connectPath)

	var b strings.Builder
	b.WriteString("https://")
	if !isConnect {
		b.WriteString("api.")
	}
	b.WriteString(soundcloudHost + "/" + path)

	if isConnect && s.params.Len() > 0 {
		b.WriteString("?" + s.params.Encode())
	}

	s.requestURL = b.String()
}

// doRequest executes the prepared request. GET sends the parameters as the query string, any other method as a
// form body. A non-empty response body is decoded as JSON.
func (s *SoundCloudService) doRequest(ctx context.Context, method string) (any, error) {
	target := s.requestURL
	encoded := s.params.Encode()

	var body io.Reader
	if method == http.MethodGet {
		if encoded != "" {
			target += "?" + encoded
		}
	} else {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, requestFailed("failed to create request: %v", err)
	}

	for key, values := range s.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if s.token != nil {
		s.token.SetAuthHeader(req)
	}

	logger := s.logger.With("id", shared.GenerateID(), "method", method, "url", s.requestURL)
	logger.Debug("soundcloud request", "params", s.params.Keys())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("soundcloud request failed", "error", err)
		return nil, requestFailed("%v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("failed to read soundcloud response", "error", err)
		return nil, requestFailed("failed to read response: %v", err)
	}

	logger.Debug("soundcloud response", "status", resp.StatusCode, "bytes", len(data))

	if resp.StatusCode >= 400 {
		err := requestFailed("%s error: `%s %s` resulted in a `%s` response: %s",
			statusClass(resp.StatusCode), method, s.requestURL, resp.Status, summarize(data))
		logger.Warn("soundcloud request failed", "status", resp.StatusCode)
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, requestFailed("invalid JSON response: %v", err)
	}

	return result, nil
}

func requestFailed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", shared.ErrRequestFailed, fmt.Sprintf(format, args...))
}

func statusClass(code int) string {
	if code >= 500 {
		return "server"
	}
	return "client"
}

// summarize truncates a response body for error messages.
func summarize(body []byte) string {
	const limit = 120
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + " (truncated...)"
	}
	return text
}
