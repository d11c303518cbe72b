package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"nodedash/pkg/ctl"
)

//go:embed VERSION
var Version string

func main() {
	if err := ctl.NewRootCommand(os.Stdout, strings.TrimSpace(Version)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
