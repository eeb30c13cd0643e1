package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/cli/config"
	"github.com/yndnr/artifact-go/internal/cli/repl"
	"github.com/yndnr/artifact-go/internal/infra/confloader"
	"github.com/yndnr/artifact-go/internal/infra/shutdown"
	"github.com/yndnr/artifact-go/internal/telemetry/logger"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"repl"},
		Usage:   "Start an interactive shell",
		Description: "Lines are run as artifact-cli commands against one open token store.\n" +
			"Global flags apply to the whole session. End a line with TAB and\n" +
			"press enter to list completions.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Do not reload the log level when the config file changes",
			},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	if rt.Config.Path != "" && !c.Bool("no-watch") {
		stop, err := watchConfig(rt, rt.Config.Path)
		if err != nil {
			rt.Logger.Warn("config watch disabled", "path", rt.Config.Path, "error", err)
		} else {
			defer stop()
		}
	}

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()

	exec := func(ctx context.Context, args []string) error {
		return newApp(rt).RunContext(ctx, append([]string{AppName}, args...))
	}

	r := repl.New(exec,
		repl.WithIO(c.App.Reader, rt.out),
		repl.WithHistory(repl.NewHistory(rt.Config.CLI.HistoryFile)),
		repl.WithCompleter(repl.NewCompleter(commandPaths(commands(false)))),
	)
	return r.Run(ctx)
}

// watchConfig re-applies the log level whenever path changes.
func watchConfig(rt *Runtime, path string) (func(), error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		cfg, err := config.Load(changed, nil)
		if err != nil {
			rt.Logger.Warn("config reload failed", "path", changed, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		rt.Logger.Info("log level reloaded", "level", logger.GetLevel())
	})
	w.StartAsync()

	return func() { w.Stop() }, nil
}

// commandPaths lists every command path ("token register") of cmds.
func commandPaths(cmds []*cli.Command) []string {
	var paths []string
	var walk func(prefix string, cmds []*cli.Command)
	walk = func(prefix string, cmds []*cli.Command) {
		for _, cmd := range cmds {
			if cmd.Hidden {
				continue
			}
			path := cmd.Name
			if prefix != "" {
				path = prefix + " " + cmd.Name
			}
			paths = append(paths, path)
			walk(path, cmd.Subcommands)
		}
	}
	walk("", cmds)
	return paths
}
