package main

import (
	"log"
	"os"

	"github.com/VinayakSharmaa/ICS4U-25-26/apps/shared"
	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB; migrations are left to the `migrate` command
	store, db, err := shared.OpenStore(conf, false)
	if err != nil {
		logger.Fatal(err)
	}

	// start CLI
	cli := commandLine{
		db:  db,
		svc: school.NewService(store, core.NewValidator()),
	}
	err = cli.run(os.Args)
	if cErr := store.Close(); cErr != nil {
		logger.Printf("closing store: %s", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
