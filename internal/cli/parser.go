// Package cli is the interactive storefront shell: it parses user commands
// and drives the session, catalog, cart, and telemetry components.
package cli

import "strings"

// Command is one parsed input line.
type Command struct {
	Name string
	Args []string
}

// ParseLine splits an input line into a command and its arguments. Blank
// lines are not commands.
func ParseLine(line string) (*Command, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return nil, false
	}
	return &Command{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, true
}
