package main

import (
	"fmt"
	"os"
)

func main() {
	root, closeStore := newRootCmd()
	err := root.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
