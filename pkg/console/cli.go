package console

import (
	"bytes"
	"fmt"
)

// Port is the serial port number the CLI claims for the receiver.
const Port = 5

// MaxLineLen is the longest accepted line, longer input is dropped.
const MaxLineLen = 63

// settings answered by "get".
var settings = map[string]string{
	"serialrx_provider":   "CRSF",
	"serialrx_inverted":   "OFF",
	"serialrx_halfduplex": "OFF",
}

// CLI emulates enough of a flight controller CLI for configurators to
// start serial passthrough.
type CLI struct {
	// Echo echoes input, enabled by "#".
	Echo bool

	line []byte
}

// Input feeds console bytes. It returns the reply to write back and, when
// a passthrough command is complete, the command. Bytes after the
// passthrough command are returned as rest and belong to the link.
func (c *CLI) Input(data []byte) (reply []byte, pt *Command, rest []byte) {
	var out bytes.Buffer
	for i, b := range data {
		if c.Echo && b != '\n' {
			out.WriteByte(b)
		}
		if b != '\r' && b != '\n' {
			c.line = append(c.line, b)
			if len(c.line) > MaxLineLen {
				c.line = c.line[:0]
			}
			continue
		}
		if len(c.line) == 0 {
			continue
		}
		out.WriteByte('\n')
		line := string(c.line)
		c.line = c.line[:0]
		if cmd := c.handle(&out, line); cmd != nil {
			return out.Bytes(), cmd, data[i+1:]
		}
	}
	return out.Bytes(), nil, nil
}

func (c *CLI) handle(out *bytes.Buffer, line string) *Command {
	cmd, ok := ParseCommand(line)
	if !ok {
		return nil
	}
	switch cmd.Kind {
	case CmdEnterCLI:
		c.Echo = true
		out.WriteString("Entering CLI Mode, type 'exit' to return\r\n")
	case CmdSerial:
		fmt.Fprintf(out, "serial %d 64 0 0 0 0\r\n", Port)
	case CmdGet:
		val, found := settings[cmd.Name]
		if !found {
			fmt.Fprintf(out, "Invalid name\r\n")
			break
		}
		fmt.Fprintf(out, "%s = %s\r\n", cmd.Name, val)
	case CmdExit:
		c.Echo = false
		out.WriteString("\r\nLeaving CLI mode\r\n")
		return nil
	case CmdSerialPassthrough:
		if cmd.Port != Port {
			return nil
		}
		// configurators wait for the command echoed back
		out.WriteString(line)
		out.WriteString("\r\n")
		c.Echo = false
		return &cmd
	}
	out.WriteString("# ")
	return nil
}
