// Command robustforecast fits a robust forecast from a csv of training data and prints the
// forecast rows as json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
