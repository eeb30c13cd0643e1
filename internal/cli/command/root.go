package command

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/infra/buildinfo"
)

// AppName is the binary name.
const AppName = "artifact-cli"

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the application. When shared is non-nil the app reuses
// it instead of loading configuration, and leaves closing it to the
// caller. The interactive shell runs every line through such an app.
func newApp(shared *Runtime) *cli.App {
	app := &cli.App{
		Name:                 AppName,
		Usage:                "Token name registry tool",
		Version:              buildinfo.String(),
		Commands:             commands(shared == nil),
		EnableBashCompletion: true,
		Before: func(c *cli.Context) error {
			if shared != nil {
				setRuntime(c, shared)
				return nil
			}
			rt, err := newRuntime(c)
			if err != nil {
				return err
			}
			setRuntime(c, rt)
			return nil
		},
		After: func(c *cli.Context) error {
			if shared != nil {
				return nil
			}
			if rt := runtimeFrom(c); rt != nil {
				return rt.Close()
			}
			return nil
		},
	}
	if shared == nil {
		app.Flags = globalFlags()
	} else {
		app.Writer = shared.out
		app.ErrWriter = shared.errOut
		app.HideVersion = true
		// The shell reports errors itself; urfave/cli must not exit.
		app.ExitErrHandler = func(*cli.Context, error) {}
	}
	return app
}

func commands(withShell bool) []*cli.Command {
	cmds := []*cli.Command{
		TokenCommand(),
		CodecCommand(),
		BatchCommand(),
		ConfigCommand(),
		VersionCommand(),
	}
	if withShell {
		cmds = append(cmds, ShellCommand())
	}
	return cmds
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.artifact/cli.yaml)",
			EnvVars: []string{"ARTIFACT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "engine",
			Usage: "Storage engine: badger, pebble, sql, memory",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory for on-disk storage engines",
		},
		&cli.StringFlag{
			Name:  "alphabet",
			Usage: "Naming alphabet: standard (38 symbols) or legacy (37 symbols)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this file on exit",
		},
	}
}

// flagKeys maps global flag names to configuration keys.
var flagKeys = map[string]string{
	"engine":       "storage.engine",
	"data-dir":     "storage.data_dir",
	"alphabet":     "naming.alphabet",
	"output":       "cli.output",
	"log-level":    "log.level",
	"metrics-file": "metrics.textfile",
}

// flagOverrides returns the explicitly set global flags as configuration
// keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if c.IsSet(name) {
			overrides[key] = c.String(name)
		}
	}
	return overrides
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
