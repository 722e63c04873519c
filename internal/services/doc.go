// Package services implements the [OAuthService] client for the SoundCloud API.
//
// # Request Parameters
//
// Every call assembles a fresh [Params] set: the application credentials (client_id, client_secret,
// redirect_uri) in that order, then the call's own fields, then the call's exclusions are removed.
// [Params] keeps insertion order, so the encoded query string or form body is deterministic.
//
//   - AuthorizeURL: scope, display, response_type; client_secret excluded
//   - LoginWithCredentials: username, password, grant_type=password; redirect_uri excluded
//   - ExchangeCode: grant_type, code; nothing excluded
//   - Get: caller fields; client_secret and redirect_uri excluded
//
// # URLs
//
// The authorization endpoint is https://soundcloud.com/connect with the parameters in its query string.
// Everything else targets https://api.soundcloud.com/<path>. POST requests carry the parameters as a
// form-encoded body, GET requests as the query string.
//
// # Tokens
//
// A successful token call stores the access token on the [SoundCloudService] and every later request carries
// "Authorization: OAuth <token>". The stored token is an [oauth2.Token] of type [TokenType]; its
// SetAuthHeader method writes the header. The raw [TokenResponse] is returned untouched.
//
// # Error Handling
//
// All transport outcomes collapse into [shared.ErrRequestFailed], wrapping the original message:
//   - 4xx responses ("client error: ...")
//   - 5xx responses ("server error: ...")
//   - connection failures, unreadable bodies and malformed JSON
//
// Nothing is retried and the session token is left untouched when a call fails.
package services
