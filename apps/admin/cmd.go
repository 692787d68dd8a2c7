package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf    *core.Config
	db      *sql.DB
	out     io.Writer
	syncSvc *classroom.Service
	cellSvc *cell.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]         - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  sync -token TOKEN              - import Google Classroom data with an OAuth access token")
	fmt.Fprintln(cli.out, "  populatecells                  - seed the demo cells and assign students and professors")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-name NAME] - issue a dashboard JWT")
}

func (cli *commandLine) run(args []string) error {
	err := cli.dispatch(args)
	if errors.Is(err, flag.ErrHelp) {
		return errHelp
	}
	return err
}

func (cli *commandLine) dispatch(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	syncCmd := flag.NewFlagSet("sync", flag.ContinueOnError)
	syncCmd.SetOutput(cli.out)
	syncToken := syncCmd.String("token", "", "The Google OAuth access token with Classroom read scopes.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenEmail := tokenCmd.String("email", "", "The user's email; it determines the role.")
	tokenName := tokenCmd.String("name", "", "The user's display name (optional).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "sync":
		if err := syncCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *syncToken == "" {
			syncCmd.Usage()
			return errHelp
		}
		return cli.sync(context.Background(), *syncToken)
	case "populatecells":
		return cli.populateCells(context.Background())
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenEmail == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.issueToken(*tokenEmail, *tokenName)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
