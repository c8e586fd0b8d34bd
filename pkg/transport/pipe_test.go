package transport

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipe(t *testing.T) {
	a, b := Pipe()
	n, err := a.Write([]byte{0xc8, 0x04})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	avail, err := b.Available()
	require.NoError(t, err)
	require.Equal(t, 2, avail)
	for _, want := range []byte{0xc8, 0x04} {
		c, err := b.ReadByte()
		require.NoError(t, err)
		require.Equal(t, want, c)
	}

	avail, err = a.Available()
	require.NoError(t, err)
	require.Zero(t, avail)

	require.NoError(t, b.Reopen(115200))
	require.Equal(t, 115200, b.Baud)
	require.Zero(t, a.Baud)
}

func TestPipeClose(t *testing.T) {
	a, b := Pipe()
	_, err := b.Write([]byte{1})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.Write([]byte{2})
	require.Equal(t, io.ErrClosedPipe, err)

	// buffered bytes are still readable
	avail, err := a.Available()
	require.NoError(t, err)
	require.Equal(t, 1, avail)
	_, err = a.ReadByte()
	require.NoError(t, err)
	_, err = a.Available()
	require.Equal(t, io.EOF, err)
}
