package keymap

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/splitkbd/pkg/cli/sh"
	"github.com/robotalks/splitkbd/pkg/kbd"
	"github.com/robotalks/splitkbd/pkg/kbd/keymap"
)

var (
	// KeymapCmd prints the normalized keymap.
	KeymapCmd = ishell.Cmd{
		Name:    "keymap",
		Aliases: []string{"km"},
		Help:    "[yaml|toml]",
		Func: sh.MustHaveKeymap(func(c *ishell.Context) {
			format := keymap.FormatYAML
			if len(c.Args) > 0 {
				format = c.Args[0]
			}
			km, _ := sh.ShellFrom(c).Keymap()
			out, err := km.Marshal(format)
			if err != nil {
				c.Err(err)
				return
			}
			c.Print(string(out))
		}),
	}

	// LayersCmd lists layers.
	LayersCmd = ishell.Cmd{
		Name: "layers",
		Help: "",
		Func: sh.MustHaveKeymap(func(c *ishell.Context) {
			km, layout := sh.ShellFrom(c).Keymap()
			for n, lc := range km.Layers {
				line := fmt.Sprintf("%d %s", n, lc.Name)
				if below, ok := layout.Below(kbd.Layer(n)); ok {
					line += " below " + layout.LayerName(below)
				}
				if len(lc.Hold) > 0 {
					line += " hold " + strings.Join(lc.Hold, " ")
				}
				c.Println(line)
			}
		}),
	}

	// ResolveCmd resolves keys from pressed switches, keeping the
	// layers of switches held since the previous resolve.
	ResolveCmd = ishell.Cmd{
		Name:    "resolve",
		Aliases: []string{"r"},
		Help:    "[SIDE:]ROW,COL ...",
		Func: sh.MustHaveKeymap(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			state, err := s.Resolve(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			s.Print(c, state, sh.FormatState(state))
		}),
	}
)

func init() {
	sh.AddCmds(
		&KeymapCmd,
		&LayersCmd,
		&ResolveCmd,
	)
}
