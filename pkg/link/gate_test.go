package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	testCases := []struct {
		name   string
		steps  func(g *Gate) []int
		reopen []int
		active bool
		baud   int
	}{
		{
			name:   "enter keeping baud",
			steps:  func(g *Gate) []int { return []int{g.Enter(0, DefaultBaud)} },
			reopen: []int{0},
			active: true,
		},
		{
			name:   "enter at protocol baud",
			steps:  func(g *Gate) []int { return []int{g.Enter(DefaultBaud, DefaultBaud)} },
			reopen: []int{0},
			active: true,
		},
		{
			name:   "enter at new baud",
			steps:  func(g *Gate) []int { return []int{g.Enter(115200, DefaultBaud)} },
			reopen: []int{115200},
			active: true,
			baud:   115200,
		},
		{
			name: "enter again without baud keeps new baud",
			steps: func(g *Gate) []int {
				return []int{g.Enter(115200, DefaultBaud), g.Enter(0, DefaultBaud)}
			},
			reopen: []int{115200, 0},
			active: true,
			baud:   115200,
		},
		{
			name: "enter again at protocol baud",
			steps: func(g *Gate) []int {
				return []int{g.Enter(115200, DefaultBaud), g.Enter(DefaultBaud, DefaultBaud)}
			},
			reopen: []int{115200, DefaultBaud},
			active: true,
		},
		{
			name: "exit same baud",
			steps: func(g *Gate) []int {
				return []int{g.Enter(0, DefaultBaud), g.Exit(DefaultBaud)}
			},
			reopen: []int{0, 0},
		},
		{
			name: "exit restores baud",
			steps: func(g *Gate) []int {
				return []int{g.Enter(115200, DefaultBaud), g.Exit(DefaultBaud)}
			},
			reopen: []int{115200, DefaultBaud},
		},
		{
			name:   "exit when inactive",
			steps:  func(g *Gate) []int { return []int{g.Exit(DefaultBaud)} },
			reopen: []int{0},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var g Gate
			require.Equal(t, tc.reopen, tc.steps(&g))
			require.Equal(t, tc.active, g.Active())
			require.Equal(t, tc.baud, g.Baud())
		})
	}
}
