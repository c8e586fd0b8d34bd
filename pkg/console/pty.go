package console

import (
	"os"

	"github.com/creack/pty"
	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/link"
)

// PTY is a Console on a pseudo terminal.
type PTY struct {
	*Console

	slave   *os.File
	symlink string
}

// OpenPTY creates a pseudo terminal for e. When symlink is not empty, a
// symbolic link to the terminal is created there, as the terminal name
// changes every time.
func OpenPTY(e *link.Engine, symlink string) (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	// the slave is kept open so reads on the master don't fail while
	// no client is attached
	if err := makeRaw(slave); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}
	p := &PTY{Console: New(master, e), slave: slave}
	if symlink != "" {
		os.Remove(symlink)
		if err := os.Symlink(slave.Name(), symlink); err != nil {
			p.Close()
			return nil, err
		}
		p.symlink = symlink
		glog.Infof("console symlink %s -> %s", symlink, slave.Name())
	}
	glog.Infof("console available on %s", slave.Name())
	return p, nil
}

// Name returns the terminal device a client opens.
func (p *PTY) Name() string {
	return p.slave.Name()
}

// Close closes the terminal and removes the symlink.
func (p *PTY) Close() error {
	if p.symlink != "" {
		os.Remove(p.symlink)
	}
	p.rw.Close()
	return p.slave.Close()
}
