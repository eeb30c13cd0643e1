package command

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// testEnv runs the app against an isolated home and data directory.
type testEnv struct {
	t       *testing.T
	home    string
	dataDir string
	engine  string
	stdin   string
}

func newTestEnv(t *testing.T, engine string) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &testEnv{
		t:       t,
		home:    home,
		dataDir: t.TempDir(),
		engine:  engine,
	}
}

// run executes one invocation with the env's engine and data dir ahead
// of args.
func (e *testEnv) run(args ...string) (stdout, stderr string, err error) {
	e.t.Helper()

	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(e.stdin)

	argv := []string{AppName, "--engine", e.engine, "--data-dir", e.dataDir}
	argv = append(argv, args...)
	err = app.Run(argv)
	return out.String(), errOut.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("run %q: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// runJSON runs args with JSON output and decodes stdout into v.
func (e *testEnv) runJSON(v any, args ...string) error {
	e.t.Helper()
	out, _, err := e.run(append([]string{"-o", "json"}, args...)...)
	if err != nil {
		return err
	}
	if derr := json.Unmarshal([]byte(out), v); derr != nil {
		e.t.Fatalf("decode %q output: %v\n%s", args, derr, out)
	}
	return nil
}
