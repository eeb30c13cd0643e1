package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/cli/config"
	"github.com/yndnr/artifact-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file in use",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	sanitized := config.Sanitize(rt.Config)
	if rt.format != output.FormatTable {
		m, err := sanitized.Map()
		if err != nil {
			return err
		}
		return rt.Print(m)
	}

	flat, err := sanitized.Flat()
	if err != nil {
		return err
	}
	return rt.Print(flat)
}

type validateResult struct {
	Path  string `json:"path" yaml:"path"`
	Valid bool   `json:"valid" yaml:"valid"`
}

// configValidate loads FILE, or the file in use, through the same layers
// as the app itself.
func configValidate(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	if path == "" {
		path = rt.Config.Path
	}
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if _, err := config.Load(path, nil); err != nil {
		return err
	}
	return rt.Print(validateResult{Path: path, Valid: true})
}

func configPath(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	path := rt.Config.Path
	if path == "" {
		path = config.DefaultConfigPath() + " (not found, using defaults)"
	}
	_, err = c.App.Writer.Write([]byte(path + "\n"))
	return err
}
