package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/ui"
	"github.com/urfave/cli/v3"
)

// PromptFunc asks the user for a username and password, pre-filling username when given.
type PromptFunc func(in io.Reader, out io.Writer, username string) (string, string, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config          *shared.Config
	soundcloud      services.OAuthService
	httpClient      *http.Client
	logger          *log.Logger
	input           io.Reader
	output          io.Writer
	palette         *ui.Palette
	prompt          PromptFunc
	openBrowser     func(string) error
	callbackTimeout time.Duration
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config          *shared.Config
	SoundCloud      services.OAuthService
	HTTPClient      *http.Client
	Logger          *log.Logger
	Input           io.Reader
	Output          io.Writer
	Prompt          PromptFunc
	OpenBrowser     func(string) error
	CallbackTimeout time.Duration
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is resolved from the --config flag in [Runner.Init].
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Prompt == nil {
		opts.Prompt = ui.PromptCredentials
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = 2 * time.Minute
	}

	return &Runner{
		config:          opts.Config,
		soundcloud:      opts.SoundCloud,
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
		input:           opts.Input,
		output:          opts.Output,
		palette:         ui.DefaultPalette,
		prompt:          opts.Prompt,
		openBrowser:     opts.OpenBrowser,
		callbackTimeout: opts.CallbackTimeout,
	}
}

// Init loads the configuration named by --config and applies the log level. It runs before every command.
//
// A missing config file is not an error: defaults are used so that `scx setup` can create one. A path that
// cannot be checked at all is reported as [shared.ErrMissingConfig].
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := loadConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	} else {
		shared.SetLogLevel(r.logger, r.config.Log.ParseLevel())
	}

	return ctx, nil
}

func loadConfig(path string) (*shared.Config, error) {
	if path == "" {
		return shared.DefaultConfig(), nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return shared.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}
	return shared.LoadConfig(path)
}

// service returns the SoundCloud client, building it from the configured credentials on first use.
func (r *Runner) service() (services.OAuthService, error) {
	if r.soundcloud != nil {
		return r.soundcloud, nil
	}

	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	creds := r.config.Credentials.SoundCloud
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run `scx setup` and edit the config file)", err)
	}

	r.soundcloud = services.NewSoundCloudService(
		creds.ClientID,
		creds.ClientSecret,
		r.config.RedirectURI(),
		services.WithHTTPClient(r.httpClient),
		services.WithLogger(shared.WithLogger(r.logger, "service", "soundcloud")),
	)

	return r.soundcloud, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){setupCommand, authCommand, apiCommand} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// reportToken prints the outcome of a token exchange, either as raw JSON or as a short summary.
func (r *Runner) reportToken(resp services.TokenResponse, asJSON bool) error {
	if asJSON {
		return r.writeJSON(resp, true)
	}

	token, ok := resp.AccessToken()
	if !ok {
		if err := r.writePlain("%s\n", r.palette.Warn("Response did not include an access token")); err != nil {
			return err
		}
		return r.writeJSON(resp, true)
	}

	var b strings.Builder
	b.WriteString(r.palette.OK("Authenticated with SoundCloud") + "\n")
	fmt.Fprintf(&b, "Access token: %s\n", token)
	if scope := resp.Scope(); scope != "" {
		fmt.Fprintf(&b, "Scope: %s\n", scope)
	}
	if expiresIn := resp.ExpiresIn(); expiresIn > 0 {
		fmt.Fprintf(&b, "Expires in: %s\n", expiresIn)
	} else {
		b.WriteString("Expires in: never\n")
	}
	if refresh := resp.RefreshToken(); refresh != "" {
		fmt.Fprintf(&b, "Refresh token: %s\n", refresh)
	}
	b.WriteString("\n" + r.palette.Help("Use it with: scx api get me --token "+token) + "\n")

	return r.writePlain("%s", b.String())
}
