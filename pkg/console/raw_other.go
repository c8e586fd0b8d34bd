//go:build !linux

package console

import "os"

func makeRaw(f *os.File) error {
	return nil
}
