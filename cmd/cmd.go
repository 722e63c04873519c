// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file from the built-in template",
		Action: r.Setup,
	}
}

// authCommand groups the ways of obtaining an access token
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Obtain a SoundCloud access token",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Log in with a SoundCloud username and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "SoundCloud username or email (prompted when missing)",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "SoundCloud password (prompted when missing)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the raw token response",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "exchange",
				Usage: "Exchange an authorization code for an access token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Authorization code received on the redirect URI",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "grant-type",
						Usage: "OAuth grant type",
						Value: "authorization_code",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the raw token response",
					},
				},
				Action: r.AuthExchange,
			},
			{
				Name:  "browser",
				Usage: "Authorize in the browser and catch the redirect on a local server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the raw token response",
					},
				},
				Action: r.AuthBrowser,
			},
		},
	}
}

// apiCommand handles raw API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Call the SoundCloud API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a resource, e.g. `scx api get me --token <token>`",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "token",
						Aliases: []string{"t"},
						Usage:   "Access token to authenticate with",
						Sources: cli.EnvVars("SCX_ACCESS_TOKEN"),
					},
					&cli.StringSliceFlag{
						Name:  "param",
						Usage: "Query parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "compact",
						Usage: "Print compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
