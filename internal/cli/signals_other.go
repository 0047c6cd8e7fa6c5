//go:build !unix

package cli

import "os"

func activationSignals() []os.Signal {
	return nil
}
