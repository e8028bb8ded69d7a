package main

import (
	"github.com/robotalks/splitkbd/pkg/cli/sh"

	_ "github.com/robotalks/splitkbd/pkg/cli/cmds/all"
)

func init() {
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
