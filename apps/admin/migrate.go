package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/trezcool/academia/storage/database"
)

var newMigratorFunc = database.NewMigrator // mockable

func (cli *commandLine) migrate(args []string) error {
	ctx := context.Background()
	provider, err := newMigratorFunc(cli.db)
	if err != nil {
		return err
	}

	command := args[0]
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		cli.printResults(results...)
		return err
	case "up-by-one":
		res, err := provider.UpByOne(ctx)
		cli.printResults(res)
		return err
	case "up-to", "down-to":
		if len(args) < 2 {
			return fmt.Errorf("%s must be of form: migrate %s VERSION", command, command)
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[1])
		}
		var results []*goose.MigrationResult
		if command == "up-to" {
			results, err = provider.UpTo(ctx, version)
		} else {
			results, err = provider.DownTo(ctx, version)
		}
		cli.printResults(results...)
		return err
	case "down":
		res, err := provider.Down(ctx)
		cli.printResults(res)
		return err
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			applied := "Pending"
			if st.State == goose.StateApplied {
				applied = st.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(cli.out, "%-20s %s\n", applied, st.Source.Path)
		}
		return nil
	case "version":
		version, err := cli.migrateVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "version %d\n", version)
		return nil
	default:
		return fmt.Errorf("%q: no such command", command)
	}
}

func (cli *commandLine) printResults(results ...*goose.MigrationResult) {
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		fmt.Fprintf(cli.out, "%-4s %s (%s)\n", res.Direction, res.Source.Path, res.Duration)
	}
}

func (cli *commandLine) migrateVersion() (int64, error) {
	provider, err := newMigratorFunc(cli.db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(context.Background())
}
