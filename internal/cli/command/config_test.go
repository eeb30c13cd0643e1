package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/artifact-go/internal/infra/buildinfo"
	"github.com/yndnr/artifact-go/internal/storage"
)

func TestConfig_Show(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	t.Setenv("ARTIFACT_STORAGE__SQL__PASSWORD", "hunter2")

	var m map[string]any
	if err := env.runJSON(&m, "config", "show"); err != nil {
		t.Fatalf("config show: %v", err)
	}
	st, ok := m["storage"].(map[string]any)
	if !ok {
		t.Fatalf("config show = %v", m)
	}
	if st["engine"] != storage.EngineMemory {
		t.Errorf("storage.engine = %v, want memory", st["engine"])
	}

	out := env.mustRun("config", "show")
	if strings.Contains(out, "hunter2") {
		t.Error("config show leaked the SQL password")
	}
	for _, want := range []string{"storage.engine", "naming.reserved", "log.level"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("storage:\n  engine: pebble\nlog:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("storage:\n  engine: floppy\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var res validateResult
	if err := env.runJSON(&res, "config", "validate", good); err != nil {
		t.Fatalf("validate good: %v", err)
	}
	if !res.Valid || res.Path != good {
		t.Errorf("validate good = %+v", res)
	}

	_, _, err := env.run("config", "validate", bad)
	if err == nil || !strings.Contains(err.Error(), "storage.engine") {
		t.Errorf("validate bad = %v, want storage.engine error", err)
	}
}

func TestConfig_Path(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)

	out := env.mustRun("config", "path")
	if !strings.Contains(out, "not found") || !strings.Contains(out, env.home) {
		t.Errorf("config path = %q", out)
	}

	file := filepath.Join(env.home, "custom.yaml")
	if err := os.WriteFile(file, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out = env.mustRun("--config", file, "config", "path")
	if strings.TrimSpace(out) != file {
		t.Errorf("config path = %q, want %q", out, file)
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)

	var info buildinfo.Info
	if err := env.runJSON(&info, "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if info != buildinfo.Get() {
		t.Errorf("version = %+v, want %+v", info, buildinfo.Get())
	}
}
