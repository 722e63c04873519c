package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file from the embedded template to the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		return fmt.Errorf("%w: --config must not be empty", shared.ErrMissingArgument)
	}

	r.logger.Info("creating config file", "path", configPath)

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(r.palette.OK("Config written to "+configPath) + "\n")
	b.WriteString("\nNext steps:\n")
	b.WriteString("  1. Register an application at https://soundcloud.com/you/apps\n")
	fmt.Fprintf(&b, "  2. Set client_id, client_secret and redirect_uri in %s\n", configPath)
	b.WriteString("  3. Run: scx auth browser\n")

	return r.writePlain("%s", b.String())
}
