package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/cli/sh"
)

func init() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	sh.Main()
}
