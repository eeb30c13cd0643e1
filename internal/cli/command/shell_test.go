package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/artifact-go/internal/storage"
)

func TestShell_RunsCommandsOnOneStore(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	env.stdin = strings.Join([]string{
		"token create AAA",
		"token get AAA",
		"token get ZZZ",
		"codec encode --raw BTC",
		"exit",
	}, "\n") + "\n"

	out, _, err := env.run("-o", "json", "shell", "--no-watch")
	if err != nil {
		t.Fatalf("shell: %v", err)
	}

	// The memory store only survives within one runtime, so the get
	// proves the session shares it.
	if strings.Count(out, `"token": "AAA"`) != 2 {
		t.Errorf("shell output should show AAA twice:\n%s", out)
	}
	if !strings.Contains(out, "Error: ") || !strings.Contains(out, "AR-TOKN-4040") {
		t.Errorf("shell output missing not-found error:\n%s", out)
	}
	if !strings.Contains(out, `"id": 5134`) {
		t.Errorf("shell output missing codec result:\n%s", out)
	}
}

func TestShell_History(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	env.stdin = "version\nexit\n"

	env.mustRun("shell")

	data, err := os.ReadFile(filepath.Join(env.home, ".artifact", "history"))
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	if !strings.Contains(string(data), "version") {
		t.Errorf("history = %q", data)
	}
}

func TestShell_Completion(t *testing.T) {
	env := newTestEnv(t, storage.EngineMemory)
	env.stdin = "token re\t\nexit\n"

	out := env.mustRun("shell")
	if !strings.Contains(out, "token register") {
		t.Errorf("completion output missing token register:\n%s", out)
	}
}
