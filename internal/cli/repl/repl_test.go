package repl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// recorder is an Executor that records every call.
type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func newTestREPL(input string, rec *recorder, opts ...Option) (*REPL, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts = append([]Option{WithIO(strings.NewReader(input), out)}, opts...)
	return New(rec.exec, opts...), out
}

func TestNew(t *testing.T) {
	r := New(nil)
	if r.completer == nil {
		t.Error("completer should be initialized")
	}
	if r.history == nil {
		t.Error("history should be initialized")
	}
	if r.prompt != DefaultPrompt {
		t.Errorf("prompt = %q, want %q", r.prompt, DefaultPrompt)
	}
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(tt.input, rec)
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() returned error: %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times, want 0", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_EmptyLines(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("\n\n\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if prompts := strings.Count(out.String(), DefaultPrompt); prompts != 4 {
		t.Errorf("prompts = %d, want 4", prompts)
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	r, _ := newTestREPL("token create \"AAA\" --flags 3\n  codec range  \nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	want := [][]string{
		{"token", "create", "AAA", "--flags", "3"},
		{"codec", "range"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
}

func TestREPL_Run_ExecutorError(t *testing.T) {
	rec := &recorder{err: errors.New("boom")}
	r, out := newTestREPL("token get AAA\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Error: boom") {
		t.Errorf("output = %q, want the executor error", out.String())
	}
}

func TestREPL_Run_History(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	rec := &recorder{}
	r, out := newTestREPL("codec range\ncodec range\ntoken list\nhistory\nexit\n", rec,
		WithHistory(NewHistory(file)))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if !strings.Contains(out.String(), "   2  token list") {
		t.Errorf("history output missing: %q", out.String())
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("history not saved: %v", err)
	}
	want := "codec range\ntoken list\nhistory\nexit\n"
	if string(data) != want {
		t.Errorf("saved history = %q, want %q", data, want)
	}
}

func TestREPL_Run_Completion(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("token c\t\nzz\t\nexit\n", rec,
		WithCompleter(NewCompleter([]string{"token create", "token get", "codec range"})))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("completion requests must not execute, got %q", rec.calls)
	}
	if !strings.Contains(out.String(), "token create\n") {
		t.Errorf("output missing completion: %q", out.String())
	}
	if strings.Contains(out.String(), "token get") {
		t.Errorf("output has a non-matching completion: %q", out.String())
	}
	if !strings.Contains(out.String(), "(no completions)") {
		t.Errorf("output missing empty completion notice: %q", out.String())
	}
}

func TestREPL_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := newTestREPL("token list\n", &recorder{})
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestREPL_Run_CustomPrompt(t *testing.T) {
	r, out := newTestREPL("exit\n", &recorder{}, WithPrompt("> "))
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "> ") {
		t.Errorf("output = %q, want custom prompt", out.String())
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"token list", []string{"token", "list"}, false},
		{"  token   list  ", []string{"token", "list"}, false},
		{`batch register "my file.txt"`, []string{"batch", "register", "my file.txt"}, false},
		{`a 'b "c"' d`, []string{"a", `b "c"`, "d"}, false},
		{`a b\ c`, []string{"a", "b c"}, false},
		{`a ""`, []string{"a", ""}, false},
		{"", nil, false},
		{`a "b`, nil, true},
		{`a \`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
