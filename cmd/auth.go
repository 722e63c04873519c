package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/scx/internal/server"
	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the URL where the user grants access to the application.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	srv, err := r.service()
	if err != nil {
		return err
	}

	authURL := srv.AuthorizeURL()
	if err := r.writePlain("%s\n", authURL); err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := r.openBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser %v", err)
			return r.writePlain("%s\n", r.palette.Warn("Could not open browser automatically"))
		}
	}

	return nil
}

// AuthLogin performs the password grant, prompting for credentials that were not passed as flags.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	srv, err := r.service()
	if err != nil {
		return err
	}

	username := cmd.String("username")
	password := cmd.String("password")
	if username == "" || password == "" {
		if username, password, err = r.prompt(r.input, r.output, username); err != nil {
			return err
		}
	}

	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	r.logger.Info("logging in with credentials", "username", username)

	resp, err := srv.LoginWithCredentials(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.reportToken(resp, cmd.Bool("json"))
}

// AuthExchange trades an authorization code obtained out of band for an access token.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	srv, err := r.service()
	if err != nil {
		return err
	}

	code := cmd.String("code")
	if code == "" {
		return fmt.Errorf("%w: --code is required", shared.ErrMissingArgument)
	}

	resp, err := srv.ExchangeCode(ctx, code, cmd.String("grant-type"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	return r.reportToken(resp, cmd.Bool("json"))
}

// AuthBrowser performs the authorization code flow end to end.
//
// Starts a local HTTP server, opens the browser for user authorization, and exchanges the code delivered to
// /callback for a token.
func (r *Runner) AuthBrowser(ctx context.Context, cmd *cli.Command) error {
	srv, err := r.service()
	if err != nil {
		return err
	}

	resp, err := r.doOAuth(ctx, srv)
	if err != nil {
		return err
	}

	return r.reportToken(resp, cmd.Bool("json"))
}

// doOAuth executes the authorization code flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, srv services.OAuthService) (services.TokenResponse, error) {
	handler := server.NewCallbackHandler(srv)
	router := server.NewBasicRouter(server.LoggingMiddleware(shared.WithLogger(r.logger, "component", "callback")))
	router.Handler(handler)

	serverAddr := r.config.Server.Addr()
	listener, err := net.Listen("tcp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", listener.Addr())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := srv.AuthorizeURL()

	if err := r.writePlain("→ Opening browser for SoundCloud authorization...\n"); err != nil {
		return nil, err
	}
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		msg := r.palette.Warn("Could not open browser automatically.") + "\n" +
			"Please open this URL in your browser:\n" + authURL + "\n\n"
		if err := r.writePlain("%s", msg); err != nil {
			return nil, err
		}
	}

	if err := r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.callbackTimeout); err != nil {
		return nil, err
	}

	timeout := time.NewTimer(r.callbackTimeout)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, r.callbackTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
	}

	return result.Token, nil
}
