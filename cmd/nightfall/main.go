// Command nightfall runs social deduction games between reasoning agents.
package main

import (
	"os"

	"github.com/Iron-Ham/nightfall/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
