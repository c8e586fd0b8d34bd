package output

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/link"
)

func TestOutputs(t *testing.T) {
	ctx := context.Background()
	o := New(DefaultMap, DefaultFailsafe)
	require.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0}, o.Values())

	var cs crsf.ChannelSet
	for n := range cs {
		cs[n] = 1000 + n*10
	}
	o.HandleChannels(ctx, cs)
	require.Equal(t, []int{1000, 1010, 1020, 1030, 1050, 1060, 1070, 1110}, o.Values())

	o.LinkStateChanged(ctx, link.LinkUp)
	require.Equal(t, 1000, o.Values()[0])
	o.LinkStateChanged(ctx, link.LinkDown)
	require.Equal(t, []int{1500, 1500, 988, 1500, 1050, 1060, 1070, 0}, o.Values())
}

func TestOutputsInverted(t *testing.T) {
	o := New([]int{-1, 16, 17}, nil)
	var cs crsf.ChannelSet
	cs[0], cs[15] = 1200, 1800
	o.HandleChannels(context.Background(), cs)
	require.Equal(t, []int{1800, 1800, 0}, o.Values())

	// no failsafe actions keep the values
	o.LinkStateChanged(context.Background(), link.LinkDown)
	require.Equal(t, []int{1800, 1800, 0}, o.Values())
}

func TestParseMap(t *testing.T) {
	m, err := ParseMap("1, 2,-3,16")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, -3, 16}, m)

	for _, s := range []string{"0", "17", "-17", "a", ""} {
		_, err := ParseMap(s)
		require.Error(t, err, s)
	}
}

func TestParseFailsafe(t *testing.T) {
	fs, err := ParseFailsafe("1500,hold, nopulses,988")
	require.NoError(t, err)
	require.Equal(t, []Failsafe{1500, FailsafeHold, FailsafeNoPulses, 988}, fs)
	require.Equal(t, "hold", fs[1].String())
	require.Equal(t, "988", fs[3].String())

	for _, s := range []string{"1", "3000", "off"} {
		_, err := ParseFailsafe(s)
		require.Error(t, err, s)
	}
}
