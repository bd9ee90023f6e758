package main

import (
	"fmt"
	"os"

	"github.com/melodypapa/autosar-calltree-sub001/internal/cliapp"
)

func main() {
	if err := cliapp.Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
