package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID retrieves the unique ID identifying the machine. The host
// name is used when the machine id is not available.
func MachineID() string {
	id, err := machineid.ID()
	if err == nil {
		return id
	}
	glog.Warningf("machine id not available: %v", err)
	if id, err = os.Hostname(); err == nil {
		return id
	}
	return "kbd"
}
