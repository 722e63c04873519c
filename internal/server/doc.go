// Package server provides the local HTTP listener used by the browser authorization flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives SoundCloud's redirect to the registered redirect URI, reads the code query
// parameter, exchanges it through a [services.CodeExchanger] and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// `scx auth browser` starts a temporary server on the configured host and port, opens the authorize URL in
// the browser, waits for the callback and shuts the server down after receiving the token.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
