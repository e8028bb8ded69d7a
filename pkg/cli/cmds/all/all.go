// Package all registers all shell commands.
package all

import (
	// command providers
	_ "github.com/robotalks/splitkbd/pkg/cli/cmds/keymap"
	_ "github.com/robotalks/splitkbd/pkg/cli/cmds/status"
)
