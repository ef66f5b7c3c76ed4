// Package device identifies the machine originating log entries.
package device

import (
	"os"
	"os/user"

	"github.com/google/uuid"
)

// ID returns "user@hostname" for this machine, falling back to a random
// UUID when either lookup fails. Entries only need the string to be telling
// apart devices sharing one remote log, so stability across runs is
// preferred but not required.
func ID() string {
	u, uerr := user.Current()
	host, herr := os.Hostname()
	if uerr != nil || herr != nil || u.Username == "" || host == "" {
		return uuid.NewString()
	}
	return u.Username + "@" + host
}
