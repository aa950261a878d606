package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/ice/common/errors"
	"github.com/twitter/ice/common/log/hooks"
	"github.com/twitter/ice/icecheck/cli"
	"github.com/twitter/ice/icecheck/demo"
)

// CLI binary to check ice binding configurations against the demo catalog
//	Supported commands: (see "-h" for all options)
//		validate --config [text|file|bundled name]
//		resolve [type] [name] --config [...] --dump
//		types
//	Global flags:
//		--format [json|yaml]
//		--env-file [.env file with ICE_LOCK_TIMEOUT, ICE_CONSTRUCTION_LOCKING, ICE_LOG_LEVEL]
//		--stats

func main() {
	log.AddHook(hooks.NewContextHook())

	cl, err := cli.NewSimpleCLIClient(cli.Environment{
		Catalog: demo.Catalog(),
		Setup:   demo.Install,
		Asset:   demo.Asset,
	}, os.Stdout, nil)
	if err != nil {
		log.Fatal("Failed to create icecheck CLI client: ", err)
	}

	if err = cl.Exec(); err != nil {
		log.Error("Error running icecheck: ", err)
		os.Exit(int(errors.ExitCodeOf(err)))
	}
}
