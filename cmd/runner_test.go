package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
	tu "github.com/desertthunder/scx/internal/testing"
	"github.com/urfave/cli/v3"
)

// mockService records calls made through [services.OAuthService] and answers with canned values.
type mockService struct {
	authorizeURL string
	token        string
	loginResp    services.TokenResponse
	exchangeResp services.TokenResponse
	getResult    any
	err          error

	calls     []string
	username  string
	password  string
	code      string
	grantType string
	path      string
	fields    *services.Params
}

func (m *mockService) Name() string { return "Mock" }

func (m *mockService) AuthorizeURL() string {
	m.calls = append(m.calls, "AuthorizeURL")
	return m.authorizeURL
}

func (m *mockService) LoginWithCredentials(ctx context.Context, username, password string) (services.TokenResponse, error) {
	m.calls = append(m.calls, "LoginWithCredentials")
	m.username, m.password = username, password
	if m.err != nil {
		return nil, m.err
	}
	return m.loginResp, nil
}

func (m *mockService) ExchangeCode(ctx context.Context, code, grantType string) (services.TokenResponse, error) {
	m.calls = append(m.calls, "ExchangeCode")
	m.code, m.grantType = code, grantType
	if m.err != nil {
		return nil, m.err
	}
	return m.exchangeResp, nil
}

func (m *mockService) Get(ctx context.Context, path string, fields *services.Params) (any, error) {
	m.calls = append(m.calls, "Get")
	m.path, m.fields = path, fields
	if m.err != nil {
		return nil, m.err
	}
	return m.getResult, nil
}

func (m *mockService) AccessToken() string       { return m.token }
func (m *mockService) SetAccessToken(tok string) { m.token = tok }

var _ services.OAuthService = (*mockService)(nil)

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Credentials.SoundCloud = shared.SoundCloudConfig{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		RedirectURI:  "http://localhost:3000/callback",
	}
	return config
}

func newTestRunner(opts RunnerOpts) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	if opts.Output == nil {
		opts.Output = output
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return NewRunner(opts), output
}

// runApp runs the full command tree the way main does.
func runApp(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:      "scx",
		Flags:     globalFlags(),
		Before:    r.Init,
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"scx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := testConfig()
			mock := &mockService{}
			logger := log.New(io.Discard)
			output := &bytes.Buffer{}
			client := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:          config,
				SoundCloud:      mock,
				HTTPClient:      client,
				Logger:          logger,
				Output:          output,
				CallbackTimeout: time.Second,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.soundcloud != mock {
				t.Error("expected soundcloud service to be set")
			}
			if runner.httpClient != client {
				t.Error("expected httpClient to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.callbackTimeout != time.Second {
				t.Errorf("expected callback timeout of 1s, got %s", runner.callbackTimeout)
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config != nil {
				t.Error("expected config to be resolved lazily")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.prompt == nil || runner.openBrowser == nil {
				t.Error("expected prompt and browser defaults to be set")
			}
			if runner.callbackTimeout != 2*time.Minute {
				t.Errorf("expected default callback timeout of 2m, got %s", runner.callbackTimeout)
			}
		})
	})

	t.Run("Init", func(t *testing.T) {
		t.Run("loads config from --config", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[credentials.soundcloud]
client_id = "file-id"
client_secret = "file-secret"

[server]
host = "127.0.0.1"
port = 4000

[log]
level = "warn"
`
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner, _ := newTestRunner(RunnerOpts{SoundCloud: &mockService{}})
			if err := runApp(runner, "--config", path, "auth", "url"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Credentials.SoundCloud.ClientID != "file-id" {
				t.Errorf("expected client id from file, got %s", runner.config.Credentials.SoundCloud.ClientID)
			}
			if runner.config.RedirectURI() != "http://127.0.0.1:4000/callback" {
				t.Errorf("expected redirect URI derived from server, got %s", runner.config.RedirectURI())
			}
			if runner.logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("missing config file uses defaults", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.toml")

			runner, _ := newTestRunner(RunnerOpts{SoundCloud: &mockService{}})
			if err := runApp(runner, "-c", path, "auth", "url"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config == nil || runner.config.Server.Port != 3000 {
				t.Errorf("expected default config, got %+v", runner.config)
			}
		})

		t.Run("invalid config file fails", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner, _ := newTestRunner(RunnerOpts{SoundCloud: &mockService{}})
			err := runApp(runner, "--config", path, "auth", "url")
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("unreadable config path fails", func(t *testing.T) {
			notDir := filepath.Join(t.TempDir(), "file")
			if err := os.WriteFile(notDir, []byte("x"), 0600); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}

			runner, _ := newTestRunner(RunnerOpts{SoundCloud: &mockService{}})
			err := runApp(runner, "--config", filepath.Join(notDir, "config.toml"), "auth", "url")
			if !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("--debug overrides configured level", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Config: testConfig(), SoundCloud: &mockService{}})
			if err := runApp(runner, "--debug", "auth", "url"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
		})
	})

	t.Run("service", func(t *testing.T) {
		t.Run("returns the injected service", func(t *testing.T) {
			mock := &mockService{}
			runner, _ := newTestRunner(RunnerOpts{SoundCloud: mock})

			srv, err := runner.service()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv != mock {
				t.Error("expected injected service")
			}
		})

		t.Run("builds a SoundCloud client from config", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Config: testConfig()})

			srv, err := runner.service()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "SoundCloud" {
				t.Errorf("expected SoundCloud service, got %s", srv.Name())
			}
			if !strings.Contains(srv.AuthorizeURL(), "client_id=test-id") {
				t.Error("expected configured client id in authorize URL")
			}

			again, _ := runner.service()
			if again != srv {
				t.Error("expected the service to be reused")
			}
		})

		t.Run("placeholder credentials are rejected", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Config: shared.DefaultConfig()})

			if _, err := runner.service(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("nil config falls back to defaults", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{})

			if _, err := runner.service(); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.writePlain("Hello %s %d\n", "world", 42); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello world 42\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("reportToken", func(t *testing.T) {
		t.Run("summarizes a token", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			resp := services.TokenResponse{"access_token": "tok-1", "scope": "non-expiring", "refresh_token": "ref-1"}
			if err := runner.reportToken(resp, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			for _, want := range []string{"Authenticated with SoundCloud", "Access token: tok-1", "Scope: non-expiring", "Expires in: never", "Refresh token: ref-1", "Use it with: scx api get me --token tok-1"} {
				if !strings.Contains(result, want) {
					t.Errorf("expected output to contain %q, got %s", want, result)
				}
			}
		})

		t.Run("prints expiry", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			resp := services.TokenResponse{"access_token": "tok-1", "expires_in": float64(3600)}
			if err := runner.reportToken(resp, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "Expires in: 1h0m0s") {
				t.Errorf("expected expiry in output, got %s", output.String())
			}
		})

		t.Run("warns when the token is missing", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.reportToken(services.TokenResponse{"error": "nope"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, "did not include an access token") {
				t.Errorf("expected warning, got %s", result)
			}
			if !strings.Contains(result, `"error": "nope"`) {
				t.Errorf("expected raw response, got %s", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner, _ := newTestRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.reportToken(services.TokenResponse{"access_token": "tok-1"}, false); err == nil {
				t.Error("expected error from failing writer for a token summary")
			}
			if err := runner.reportToken(services.TokenResponse{}, false); err == nil {
				t.Error("expected error from failing writer for a missing token")
			}
		})

		t.Run("raw JSON", func(t *testing.T) {
			runner, output := newTestRunner(RunnerOpts{})

			if err := runner.reportToken(services.TokenResponse{"access_token": "tok-1"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if strings.TrimSpace(output.String()) != "{\n  \"access_token\": \"tok-1\"\n}" {
				t.Errorf("unexpected JSON output %q", output.String())
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := newTestRunner(RunnerOpts{})

		var names []string
		for _, c := range runner.register() {
			names = append(names, c.Name)
		}

		if strings.Join(names, ",") != "setup,auth,api" {
			t.Errorf("expected setup,auth,api commands, got %v", names)
		}
	})
}
