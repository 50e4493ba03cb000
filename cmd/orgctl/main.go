package main

import (
	"os"
)

func main() {
	cmd, closeSession := newRootCmd(defaultOpener)
	err := cmd.Execute()
	closeSession()
	if err != nil {
		os.Exit(1)
	}
}
