//go:build unix

package cli

import (
	"os"
	"syscall"
)

// activationSignals are the signals that report the player became active.
func activationSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
