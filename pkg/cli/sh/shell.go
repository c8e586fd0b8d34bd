package sh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"reflect"
	"sort"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/config"
	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/msgs"
)

// CommandTimeout limits how long a command waits for the loop.
const CommandTimeout = time.Second

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *config.Config
	Link   *LinkLoop
}

// LinkLoop is a running loop driving an opened link.
type LinkLoop struct {
	Ctx    context.Context
	Cancel func()
	Name   string
	Loop   *fx.Loop
	Engine *link.Engine
	Home   *telemetry.HomeTracker
	Closer io.Closer
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&StatusCmd,
		&ChannelsCmd,
		&LinkStatsCmd,
		&SensorsCmd,
		&HomeCmd,
		&SetCmd,
		&SendCmd,
		&PassthroughCmd,
		&BootloaderCmd,
	}
)

// SetupFlags registers shell flags on fs.
func SetupFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&evalOnly, "eval", "e", evalOnly, "Evaluation only, no interactive shell.")
	fs.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpened wraps command func requires an opened link.
func MustBeOpened(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Link == nil {
			c.Err(fmt.Errorf("link not opened"))
			return
		}
		fn(c)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens the configured device and starts the loop.
func (s *Shell) Open() error {
	e, t, err := s.Config.NewEngine()
	if err != nil {
		return err
	}
	s.Attach(s.Config.Device, e, t)
	return nil
}

// Attach starts a loop driving e. closer is closed on Close.
func (s *Shell) Attach(name string, e *link.Engine, closer io.Closer) {
	ll := &LinkLoop{
		Name:   name,
		Loop:   fx.NewLoop(),
		Engine: e,
		Home:   &telemetry.HomeTracker{},
		Closer: closer,
	}
	e.AddHandler(ll.Home)
	ll.Ctx, ll.Cancel = context.WithCancel(context.Background())
	ll.Loop.Add(e)
	s.Close()
	s.Link = ll
	go ll.Loop.Run(ll.Ctx)
	if s.Shell != nil {
		s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	}
}

// Close stops the loop and closes the link.
func (s *Shell) Close() {
	if s.Link == nil {
		return
	}
	s.Link.Cancel()
	if s.Link.Closer != nil {
		s.Link.Closer.Close()
	}
	s.Link = nil
	if s.Shell != nil {
		s.Shell.SetPrompt(unopenedPrompt)
	}
}

// Do runs a request in the loop and waits for the result.
func (s *Shell) Do(req link.Request) error {
	if s.Link == nil {
		return fmt.Errorf("link not opened")
	}
	ctx, cancel := context.WithTimeout(s.Link.Ctx, CommandTimeout)
	defer cancel()
	if err := link.Do(ctx, s.Link.Loop, req); err != nil {
		if err == context.DeadlineExceeded {
			return fmt.Errorf("command timeout")
		}
		return err
	}
	return nil
}

// Query runs fn against the engine inside the loop.
func (s *Shell) Query(fn func(*link.Engine) error) error {
	return s.Do(&link.QueryMsg{Func: fn})
}

// Print writes a message in the selected format.
func (s *Shell) Print(w io.Writer, msg msgs.SerializableMessage) error {
	if s.OutputJSON {
		out, err := json.Marshal(msg.Serializable())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		_, err := fmt.Fprintln(w, "OK")
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		msg.Serializable().String())
	return err
}

// Status is a snapshot of the link.
type Status struct {
	State       string     `json:"state"`
	Passthrough bool       `json:"passthrough"`
	Baud        int        `json:"baud,omitempty"`
	Stats       link.Stats `json:"stats"`
}

// Status retrieves the link status.
func (s *Shell) Status() (st Status, err error) {
	err = s.Query(func(e *link.Engine) error {
		st.State = e.LinkState().String()
		st.Passthrough, st.Baud = e.Passthrough()
		st.Stats = e.Stats()
		return nil
	})
	return
}

// Sensors retrieves the latest telemetry payloads ordered by frame type.
func (s *Shell) Sensors() (payloads []crsf.Payload, err error) {
	err = s.Query(func(e *link.Engine) error {
		for t := range crsf.PayloadTypes {
			if p := e.Sensor(t); p != nil {
				payloads = append(payloads, p)
			}
		}
		return nil
	})
	sort.Slice(payloads, func(i, j int) bool {
		return payloads[i].FrameType() < payloads[j].FrameType()
	})
	return
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.Device != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Device)
		}
		if err := s.Open(); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Device, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	config.SetupFlags(pflag.CommandLine)
	SetupFlags(pflag.CommandLine)
	pflag.Parse()
	New(config.NewConfig()).WithAutoOpen(true).Run(pflag.Args()...)
}
