package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/scx/internal/services"
)

// CallbackResult is the outcome of one OAuth redirect.
type CallbackResult struct {
	Token services.TokenResponse
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the redirect of the SoundCloud authorization flow.
//
// The first request to /callback is processed; later requests are rejected.
type CallbackHandler struct {
	exchanger   services.CodeExchanger
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler that trades the received code through exchanger.
func NewCallbackHandler(exchanger services.CodeExchanger) *CallbackHandler {
	return &CallbackHandler{
		exchanger:  exchanger,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP reads the authorization code, exchanges it, and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization denied: %s - %s", query.Get("error"), query.Get("error_description"))
		h.Send(CallbackResult{err: err})
		renderPage(w, http.StatusBadRequest, "Authorization Failed", "SoundCloud did not return an authorization code.")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	token, err := h.exchanger.ExchangeCode(ctx, code, services.GrantTypeAuthorizationCode)
	if err != nil {
		h.Send(CallbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		renderPage(w, http.StatusBadGateway, "Token Exchange Failed", "Check the terminal for details.")
		return
	}

	h.Send(CallbackResult{Token: token})
	renderPage(w, http.StatusOK, "✓ Authorization Successful", "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #FF5500; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, struct{ Title, Message string }{title, message})
}
