// Command gradebookctl computes gradebook reports from a snapshot file or
// straight from the gradebook database.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
