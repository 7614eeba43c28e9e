// Command diagnose checks the external collaborators the assistant depends on.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printer.Fail("%v", err)
		os.Exit(1)
	}
}
