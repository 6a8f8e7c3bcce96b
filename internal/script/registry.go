package script

import (
	"context"
	"sort"

	"github.com/radio-control/rclink/internal/command"
)

// HandlerFunc runs one script command against the command state.
// The returned text, if any, is echoed by the runner.
type HandlerFunc func(ctx context.Context, st *command.State, params []string) (string, error)

// Command describes a script command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Handle      HandlerFunc
}

// Registry manages available script commands.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command, replacing any command with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// Get returns a command by name.
func (r *Registry) Get(name string) (*Command, bool) {
	cmd, exists := r.commands[name]
	return cmd, exists
}

// List returns all registered command names in order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
