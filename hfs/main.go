package main

import (
	"fmt"
	"os"

	"github.com/HeliosSoftware/hfs-sub000/hfs/hfscli"
	"github.com/HeliosSoftware/hfs-sub000/log"
)

func main() {
	app := hfscli.GetApp()
	if err := app.Run(os.Args); err != nil {
		log.CLI.Error(err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
