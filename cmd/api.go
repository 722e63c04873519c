package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet performs an authenticated GET against the SoundCloud API and prints the decoded JSON.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: resource path is required, e.g. `scx api get me`", shared.ErrMissingArgument)
	}

	fields, err := parseParamFlags(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	srv, err := r.service()
	if err != nil {
		return err
	}

	if token := cmd.String("token"); token != "" {
		srv.SetAccessToken(token)
	}
	if srv.AccessToken() == "" {
		if isUserResource(path) {
			return fmt.Errorf("%w: %q needs an access token, pass --token or run `scx auth login`", shared.ErrNotAuthenticated, path)
		}
		r.logger.Warn("no access token set, request will be anonymous")
	}

	r.logger.Debug("calling soundcloud api", "path", path, "params", fields.Keys())

	result, err := srv.Get(ctx, path, fields)
	if err != nil {
		return err
	}

	return r.writeJSON(result, !cmd.Bool("compact"))
}

// parseParamFlags turns repeated key=value flags into ordered request parameters.
func parseParamFlags(values []string) (*services.Params, error) {
	params := services.NewParams()
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be key=value", shared.ErrInvalidArgument, v)
		}
		params.Set(key, value)
	}
	return params, nil
}

// isUserResource reports whether path addresses the authenticated user (/me and below).
func isUserResource(path string) bool {
	path = strings.TrimPrefix(path, "/")
	path, _, _ = strings.Cut(path, "?")
	return path == "me" || strings.HasPrefix(path, "me/")
}
