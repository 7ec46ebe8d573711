package repl

import "strings"

// Completer suggests control commands by prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the control command set.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"status",
			"gate", "gate toggle",
			"size", "delay",
			"events", "entity", "entities clear", "notification",
			"addon", "addon install",
			"help", "exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix, in table order.
func (c *Completer) Complete(prefix string) []string {
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
