// Package capture records out-of-band link bytes, which are usually log
// messages printed by the receiver, into time stamped text files.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/lestrrat-go/strftime"
)

// Defaults.
const (
	DefaultFilePattern  = "crsf-%Y%m%d.log"
	DefaultStampPattern = "%Y-%m-%d %H:%M:%S"
	// MaxLineLen forces a line break on long runs without newlines.
	MaxLineLen = 256
)

// Capture writes out-of-band bytes line by line. The file name is a
// strftime pattern, a new file is opened whenever the formatted name
// changes.
type Capture struct {
	Dir          string
	FilePattern  string
	StampPattern string
	// Now provides time, time.Now if nil.
	Now func() time.Time

	lock  sync.Mutex
	line  []byte
	file  *os.File
	fname string
}

// New creates a Capture writing into dir.
func New(dir string) *Capture {
	return &Capture{
		Dir:          dir,
		FilePattern:  DefaultFilePattern,
		StampPattern: DefaultStampPattern,
	}
}

// HandleOOB implements link.OOBHandler.
func (c *Capture) HandleOOB(ctx context.Context, b byte) {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch {
	case b == '\n':
		c.writeLine()
	case b == '\r':
	case b == '\t' || (b >= 0x20 && b < 0x7f):
		c.line = append(c.line, b)
	default:
		c.line = append(c.line, fmt.Sprintf("\\x%02x", b)...)
	}
	if len(c.line) >= MaxLineLen {
		c.writeLine()
	}
}

// Flush writes a pending partial line.
func (c *Capture) Flush() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.line) > 0 {
		c.writeLine()
	}
}

// Close flushes and closes the current file.
func (c *Capture) Close() error {
	c.Flush()
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closeFile()
}

// FileName returns the name of the current file, empty if none is open.
func (c *Capture) FileName() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.file == nil {
		return ""
	}
	return c.file.Name()
}

func (c *Capture) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Capture) writeLine() {
	defer func() { c.line = c.line[:0] }()
	now := c.now()
	if err := c.open(now); err != nil {
		glog.Warningf("capture: %v", err)
		return
	}
	stamp, err := strftime.Format(c.StampPattern, now)
	if err != nil {
		glog.Warningf("capture stamp: %v", err)
		return
	}
	if _, err := fmt.Fprintf(c.file, "%s %s\n", stamp, c.line); err != nil {
		glog.Warningf("capture write: %v", err)
	}
}

func (c *Capture) open(now time.Time) error {
	fname, err := strftime.Format(c.FilePattern, now)
	if err != nil {
		return err
	}
	if c.file != nil && fname == c.fname {
		return nil
	}
	c.closeFile()
	f, err := os.OpenFile(filepath.Join(c.Dir, fname), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	glog.Infof("capture to %s", f.Name())
	c.file, c.fname = f, fname
	return nil
}

func (c *Capture) closeFile() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file, c.fname = nil, ""
	return err
}
