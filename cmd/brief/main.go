package main

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/internal/config"
	"github.com/brief-lang/brief/internal/maincmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := maincmd.Cmd{BuildVersion: version, BuildDate: buildDate, MaxSteps: cfg.MaxSteps}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
