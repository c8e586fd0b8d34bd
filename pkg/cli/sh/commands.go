package sh

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry/msgs"
)

func printMsg(c *ishell.Context, msg msgs.SerializableMessage) {
	var out bytes.Buffer
	if err := ShellFrom(c).Print(&out, msg); err != nil {
		c.Err(err)
		return
	}
	c.Print(out.String())
}

func printResult(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	printMsg(c, &msgs.CommandOK{})
}

// ParseSendArgs parses "TYPE HEX [ADDR]" into a send request.
func ParseSendArgs(args []string) (*link.SendMsg, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("TYPE HEX [ADDR] expected")
	}
	typ, err := crsf.ParseFrameType(args[0])
	if err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(args[1]), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %v", err)
	}
	msg := &link.SendMsg{
		Address: crsf.AddrFlightController,
		Payload: &crsf.Raw{Type: typ, Data: data},
	}
	if len(args) > 2 {
		if msg.Address, err = crsf.ParseAddress(args[2]); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// ParseChannelArgs parses pairs of "CHANNEL MICROSECONDS".
func ParseChannelArgs(args []string) (map[int]int, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, fmt.Errorf("CHANNEL US pairs expected")
	}
	values := make(map[int]int)
	for n := 0; n < len(args); n += 2 {
		ch, err := strconv.Atoi(args[n])
		if err != nil || ch < 1 || ch > crsf.NumChannels {
			return nil, fmt.Errorf("invalid channel %q", args[n])
		}
		us, err := strconv.Atoi(args[n+1])
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", args[n+1])
		}
		values[ch] = us
	}
	return values, nil
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[DEVICE [BAUD]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Config.Device = c.Args[0]
			}
			if len(c.Args) > 1 {
				baud, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(fmt.Errorf("invalid baud %q", c.Args[1]))
					return
				}
				s.Config.Baud = baud
			}
			if err := s.Open(); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current link.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// StatusCmd shows link state and counters.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Func: MustBeOpened(func(c *ishell.Context) {
			s := ShellFrom(c)
			st, err := s.Status()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(st)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			c.Printf("link %s", st.State)
			if st.Passthrough {
				c.Printf(", passthrough at %d", st.Baud)
			}
			c.Println()
			c.Printf("%+v\n", st.Stats)
		}),
	}

	// ChannelsCmd shows the received channels.
	ChannelsCmd = ishell.Cmd{
		Name:    "channels",
		Aliases: []string{"ch"},
		Func: MustBeOpened(func(c *ishell.Context) {
			var cs crsf.ChannelSet
			err := ShellFrom(c).Query(func(e *link.Engine) error {
				cs = e.Channels()
				return nil
			})
			if err != nil {
				c.Err(err)
				return
			}
			printMsg(c, msgs.FromChannels(cs))
		}),
	}

	// LinkStatsCmd shows the latest link statistics.
	LinkStatsCmd = ishell.Cmd{
		Name:    "linkstats",
		Aliases: []string{"ls"},
		Func: MustBeOpened(func(c *ishell.Context) {
			var ls crsf.LinkStatistics
			err := ShellFrom(c).Query(func(e *link.Engine) error {
				ls = e.LinkStatistics()
				return nil
			})
			if err != nil {
				c.Err(err)
				return
			}
			printMsg(c, msgs.FromLinkStatistics(&ls))
		}),
	}

	// SensorsCmd shows the latest telemetry payloads.
	SensorsCmd = ishell.Cmd{
		Name:    "sensors",
		Aliases: []string{"tm"},
		Func: MustBeOpened(func(c *ishell.Context) {
			payloads, err := ShellFrom(c).Sensors()
			if err != nil {
				c.Err(err)
				return
			}
			for _, p := range payloads {
				msg, err := msgs.FromPayload(p)
				if err != nil {
					c.Err(fmt.Errorf("%s: %v", p.FrameType(), err))
					continue
				}
				printMsg(c, msg)
			}
		}),
	}

	// HomeCmd shows the position relative to the first GPS fix.
	HomeCmd = ishell.Cmd{
		Name: "home",
		Help: "[reset]",
		Func: MustBeOpened(func(c *ishell.Context) {
			home := ShellFrom(c).Link.Home
			if len(c.Args) > 0 && c.Args[0] == "reset" {
				home.Reset()
				return
			}
			pos, ok := home.Position()
			if !ok {
				c.Err(fmt.Errorf("no GPS fix"))
				return
			}
			printMsg(c, msgs.FromPosition(pos))
		}),
	}

	// SetCmd sets outgoing channels and sends them once.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "CHANNEL US [CHANNEL US ...]",
		Func: MustBeOpened(func(c *ishell.Context) {
			values, err := ParseChannelArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			printResult(c, ShellFrom(c).Query(func(e *link.Engine) error {
				for ch, us := range values {
					e.SetChannel(ch, us)
				}
				return e.SendChannels()
			}))
		}),
	}

	// SendCmd sends a raw payload.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "TYPE HEX [ADDR]",
		Func: MustBeOpened(func(c *ishell.Context) {
			msg, err := ParseSendArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			printResult(c, ShellFrom(c).Do(msg))
		}),
	}

	// PassthroughCmd enters or leaves passthrough mode.
	PassthroughCmd = ishell.Cmd{
		Name:    "passthrough",
		Aliases: []string{"pt"},
		Help:    "BAUD|off",
		Func: MustBeOpened(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("BAUD or off expected"))
				return
			}
			msg := &link.PassthroughMsg{}
			if c.Args[0] != "off" {
				baud, err := strconv.Atoi(c.Args[0])
				if err != nil || baud < 0 {
					c.Err(fmt.Errorf("invalid baud %q", c.Args[0]))
					return
				}
				msg.Enable, msg.Baud = true, baud
			}
			printResult(c, ShellFrom(c).Do(msg))
		}),
	}

	// BootloaderCmd reboots the receiver into its bootloader.
	BootloaderCmd = ishell.Cmd{
		Name: "bootloader",
		Func: MustBeOpened(func(c *ishell.Context) {
			printResult(c, ShellFrom(c).Do(&link.SendMsg{
				Address:   crsf.AddrReceiver,
				Payload:   crsf.RebootToBootloader(),
				Unchecked: true,
			}))
		}),
	}
)
