// Command scan is the thin CLI driver: it wires internal/cli's command
// tree together and nothing else — no engine logic lives here.
package main

import (
	"fmt"
	"os"

	"github.com/polyglotscan/engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
