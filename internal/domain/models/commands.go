package models

import "strings"

// CommandType enumerates the stock commands operators can send over WhatsApp.
type CommandType string

const (
	CommandStock       CommandType = "stock"
	CommandCritical    CommandType = "critical"
	CommandConsumption CommandType = "consumption"
	CommandSKU         CommandType = "sku"
	CommandHelp        CommandType = "help"
	CommandUnknown     CommandType = "unknown"
)

// Command is a parsed operator instruction.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form message text. The leading slash
// is optional and matching is case-insensitive; arguments keep their original case
// so SKUs survive.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch CommandType(head) {
	case CommandStock, CommandCritical, CommandConsumption, CommandSKU, CommandHelp:
		cmd.Type = CommandType(head)
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
