// Command jobportal is the terminal client of the job-matching platform.
// It keeps its session in a token file and offers each role the same
// actions as the web client.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
