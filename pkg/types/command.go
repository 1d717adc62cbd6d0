package types

import (
	"fmt"
	"strings"
)

// CommandType is the verb of a command.
type CommandType string

// Command types. The set is closed.
const (
	CommandCreate CommandType = "create"
	CommandUpdate CommandType = "update"
	CommandDelete CommandType = "delete"
	CommandQuery  CommandType = "query"
)

// CommandTypes lists every command type.
var CommandTypes = []CommandType{CommandCreate, CommandUpdate, CommandDelete, CommandQuery}

// Valid reports whether c is one of the declared command types.
func (c CommandType) Valid() bool {
	switch c {
	case CommandCreate, CommandUpdate, CommandDelete, CommandQuery:
		return true
	default:
		return false
	}
}

// Mutating reports whether the command writes data.
func (c CommandType) Mutating() bool {
	return c == CommandCreate || c == CommandUpdate || c == CommandDelete
}

// ParseCommandType parses a command type case-insensitively.
func ParseCommandType(s string) (CommandType, error) {
	c := CommandType(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCommand, s)
	}
	return c, nil
}
