package main

import (
	"errors"

	"github.com/trezcool/goose"

	"github.com/VinayakSharmaa/ICS4U-25-26/fs"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database"
)

var (
	gooseRunFunc = goose.RunFS // mockable

	errNoSQLDatabase = errors.New("migrate: the database engine is not an SQL one")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	if err := goose.SetDialect(cli.db.DriverName()); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, appfs.FS, database.MigrationsDir, arguments...)
}
