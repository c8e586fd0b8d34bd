package console

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIQueries(t *testing.T) {
	var c CLI
	reply, cmd, _ := c.Input([]byte("serial\r\n"))
	require.Nil(t, cmd)
	require.Equal(t, "\nserial 5 64 0 0 0 0\r\n# ", string(reply))

	reply, _, _ = c.Input([]byte("get serialrx_inverted\n"))
	require.Equal(t, "\nserialrx_inverted = OFF\r\n# ", string(reply))

	reply, _, _ = c.Input([]byte("get nothing\n"))
	require.Equal(t, "\nInvalid name\r\n# ", string(reply))

	// unknown commands get no prompt
	reply, _, _ = c.Input([]byte("version\n"))
	require.Equal(t, "\n", string(reply))
}

func TestCLIEcho(t *testing.T) {
	var c CLI
	reply, _, _ := c.Input([]byte("#\r"))
	require.True(t, c.Echo)
	// echo starts after the "#" line
	require.Equal(t, "\nEntering CLI Mode, type 'exit' to return\r\n# ", string(reply))

	// split across reads
	reply, _, _ = c.Input([]byte("ser"))
	require.Equal(t, "ser", string(reply))
	reply, _, _ = c.Input([]byte("ial\r"))
	require.Equal(t, "ial\r\nserial 5 64 0 0 0 0\r\n# ", string(reply))

	c.Input([]byte("exit\n"))
	require.False(t, c.Echo)
}

func TestCLIPassthrough(t *testing.T) {
	var c CLI
	reply, cmd, rest := c.Input([]byte("serialpassthrough 5 115200\n\xec\x04"))
	require.NotNil(t, cmd)
	require.Equal(t, 115200, cmd.Baud)
	require.Equal(t, "\nserialpassthrough 5 115200\r\n", string(reply))
	require.Equal(t, []byte{0xec, 0x04}, rest)
}

func TestCLIPassthroughOtherPort(t *testing.T) {
	var c CLI
	_, cmd, _ := c.Input([]byte("serialpassthrough 1 115200\n"))
	require.Nil(t, cmd)
}

func TestCLILongLine(t *testing.T) {
	var c CLI
	c.Input([]byte(strings.Repeat("x", MaxLineLen+1)))
	_, cmd, _ := c.Input([]byte("serialpassthrough 5 0\n"))
	require.NotNil(t, cmd)
	require.Zero(t, cmd.Baud)
}
