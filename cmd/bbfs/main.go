// bbfs ranks the digits of a lottery-style history, recommends a reduced
// digit set with its mirror, and lists the strongest co-occurring pairs.
// Runs directly on files or as a daemon behind a socket, HTTP API and inbox.
package main

import (
	"os"

	"github.com/corey/bbfs/cmd/bbfs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
