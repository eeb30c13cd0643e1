package command

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/artifact-go/internal/storage"
)

func TestApp(t *testing.T) {
	app := App()
	if app.Name != AppName {
		t.Errorf("Name = %q, want %q", app.Name, AppName)
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"token", "codec", "batch", "config", "version", "shell"} {
		if !names[name] {
			t.Errorf("missing command: %s", name)
		}
	}

	flags := make(map[string]bool)
	for _, f := range app.Flags {
		flags[f.Names()[0]] = true
	}
	for _, name := range []string{"config", "engine", "data-dir", "alphabet", "output", "log-level", "metrics-file"} {
		if !flags[name] {
			t.Errorf("missing global flag: %s", name)
		}
	}
}

func TestNewApp_Shared(t *testing.T) {
	app := newApp(&Runtime{})
	if len(app.Flags) != 0 {
		t.Error("shell app should not accept global flags")
	}
	for _, cmd := range app.Commands {
		if cmd.Name == "shell" {
			t.Error("shell app must not nest the shell")
		}
	}
}

func TestFlagOverrides(t *testing.T) {
	var got map[string]any
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			got = flagOverrides(c)
			return nil
		},
	}

	if err := app.Run([]string{"test", "--engine", "memory", "-o", "json", "--metrics-file", "m.prom"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]any{
		"storage.engine":   "memory",
		"cli.output":       "json",
		"metrics.textfile": "m.prom",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flagOverrides() = %v, want %v", got, want)
	}
}

func TestCommandPaths(t *testing.T) {
	paths := commandPaths(commands(false))

	for _, want := range []string{"token", "token register", "codec range", "batch register", "config show"} {
		if !slices.Contains(paths, want) {
			t.Errorf("commandPaths() missing %q", want)
		}
	}
	if slices.Contains(paths, "shell") {
		t.Error("commandPaths(commands(false)) should not list shell")
	}
}

func TestApp_InvalidConfig(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)

	_, _, err := env.run("--alphabet", "base64", "codec", "range")
	if err == nil || !strings.Contains(err.Error(), "naming.alphabet") {
		t.Errorf("run() = %v, want naming.alphabet error", err)
	}
}

func TestApp_MissingConfigFile(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)

	_, _, err := env.run("--config", filepath.Join(env.home, "missing.yaml"), "version")
	if err == nil {
		t.Error("run() with a missing --config file should fail")
	}
}

func TestApp_ConfigFileFromHome(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	dir := filepath.Join(env.home, ".artifact")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cli.yaml"), []byte("naming:\n  alphabet: legacy\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var r rangeView
	if err := env.runJSON(&r, "codec", "range"); err != nil {
		t.Fatalf("codec range: %v", err)
	}
	if r.Alphabet != "legacy" || r.Base != 37 {
		t.Errorf("range = %+v, want legacy alphabet from the config file", r)
	}
}

func TestApp_MetricsFile(t *testing.T) {
	env := newTestEnv(t, storage.EngineBadger)
	path := filepath.Join(env.home, "artifact.prom")

	env.mustRun("--metrics-file", path, "token", "create", "AAA")
	_, _, err := env.run("--metrics-file", path, "token", "create", "BTC")
	if err == nil {
		t.Fatal("create BTC should be rejected")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`artifact_registrations_total{outcome="rejected"} 1`,
		`artifact_rule_violations_total{code="AR-NAME-4008"} 1`,
		"artifact_build_info",
		"artifact_badger_",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics file missing %q", want)
		}
	}
}

func TestPrintError(t *testing.T) {
	var b strings.Builder
	PrintError(&b, errors.New("boom"))
	if b.String() != "error: boom\n" {
		t.Errorf("PrintError() wrote %q", b.String())
	}
}
