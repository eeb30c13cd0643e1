// Package repl implements the interactive mode of artifact-cli.
//
//   - repl.go: the read-eval-print loop and line splitting
//   - completer.go: command completion
//   - history.go: history persistence
//
// The loop reads plain lines from its input. A line containing a tab
// character is a completion request for the text before the tab.
// Built-in commands are exit, quit and history; everything else goes to
// the Executor.
package repl
