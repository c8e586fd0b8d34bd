// Package console exposes the link to a local configurator or flasher.
//
// A pseudo terminal speaks a minimal flight controller CLI. Configurators
// use it to start serial passthrough, after which the terminal carries raw
// bytes to and from the receiver.
package console
