package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		cmd  Command
	}{
		{"#", true, Command{Kind: CmdEnterCLI}},
		{"serial", true, Command{Kind: CmdSerial}},
		{"get serialrx_provider", true, Command{Kind: CmdGet, Name: "serialrx_provider"}},
		{"  exit ", true, Command{Kind: CmdExit}},
		{"serialpassthrough 5 420000", true, Command{Kind: CmdSerialPassthrough, Port: 5, Baud: 420000}},
		{"serialpassthrough 5 115200 rxtx", true, Command{Kind: CmdSerialPassthrough, Port: 5, Baud: 115200}},
		{"serialpassthrough 5", false, Command{}},
		{"serialpassthrough x 115200", false, Command{}},
		{"serialpassthrough 5 fast", false, Command{}},
		{"get", false, Command{}},
		{"# more", false, Command{}},
		{"version", false, Command{}},
		{"", false, Command{}},
	}
	for _, c := range cases {
		t.Run(c.line, func(t *testing.T) {
			cmd, ok := ParseCommand(c.line)
			require.Equal(t, c.ok, ok)
			require.Equal(t, c.cmd, cmd)
		})
	}
}
