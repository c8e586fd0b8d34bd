package console

import (
	"strconv"
	"strings"
)

// CommandKind identifies a console command.
type CommandKind int

// Known commands.
const (
	CmdUnknown CommandKind = iota
	CmdEnterCLI
	CmdSerial
	CmdGet
	CmdSerialPassthrough
	CmdExit
)

// Command is a parsed console line.
type Command struct {
	Kind CommandKind
	// Name is the setting name of CmdGet.
	Name string
	// Port and Baud are the arguments of CmdSerialPassthrough.
	Port int
	Baud int
}

// ParseCommand parses one console line. Lines which aren't understood
// return ok false.
func ParseCommand(line string) (cmd Command, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "#":
		if len(fields) == 1 {
			return Command{Kind: CmdEnterCLI}, true
		}
	case "serial":
		if len(fields) == 1 {
			return Command{Kind: CmdSerial}, true
		}
	case "get":
		if len(fields) == 2 {
			return Command{Kind: CmdGet, Name: fields[1]}, true
		}
	case "exit":
		return Command{Kind: CmdExit}, true
	case "serialpassthrough":
		if len(fields) < 3 {
			return
		}
		port, err := strconv.Atoi(fields[1])
		if err != nil || port < 0 {
			return
		}
		baud, err := strconv.Atoi(fields[2])
		if err != nil || baud < 0 {
			return
		}
		return Command{Kind: CmdSerialPassthrough, Port: port, Baud: baud}, true
	}
	return
}
