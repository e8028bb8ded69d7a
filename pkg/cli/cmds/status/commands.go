package status

import (
	"fmt"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/splitkbd/pkg/cli/sh"
)

// DefaultWatchDuration is how long watch runs without a duration.
const DefaultWatchDuration = 10 * time.Second

var (
	// StatusCmd prints the latest status of keyboards.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "[ID...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			ids := c.Args
			if len(ids) == 0 {
				ids = s.Status.DeviceIDs()
			}
			for _, id := range ids {
				snapshot := s.Status.Get(id)
				if snapshot == nil {
					c.Err(fmt.Errorf("%s: no status", id))
					continue
				}
				s.Print(c, snapshot, sh.FormatSnapshot(snapshot))
			}
		}),
	}

	// WatchCmd prints status changes for a while.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[DURATION] [ID]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			duration, id := DefaultWatchDuration, ""
			for _, arg := range c.Args {
				if d, err := time.ParseDuration(arg); err == nil {
					duration = d
				} else {
					id = arg
				}
			}
			updates, stop := s.Status.Watch()
			defer stop()
			timeout := time.After(duration)
			for {
				select {
				case snapshot := <-updates:
					if id == "" || snapshot.DeviceID == id {
						s.Print(c, snapshot, sh.FormatSnapshot(snapshot))
					}
				case <-timeout:
					return
				}
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&StatusCmd,
		&WatchCmd,
	)
}
