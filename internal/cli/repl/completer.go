package repl

import (
	"sort"
	"strings"
)

// Builtins are the commands the REPL handles itself.
var Builtins = []string{"exit", "quit", "history"}

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for commands plus the builtins.
// Commands are full command paths such as "token register".
func NewCompleter(commands []string) *Completer {
	seen := make(map[string]struct{})
	all := make([]string, 0, len(commands)+len(Builtins))
	for _, cmd := range append(append([]string(nil), commands...), Builtins...) {
		if _, ok := seen[cmd]; ok || cmd == "" {
			continue
		}
		seen[cmd] = struct{}{}
		all = append(all, cmd)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
