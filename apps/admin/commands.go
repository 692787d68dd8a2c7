package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/semillerodigital/insights/core/user"
)

func (cli *commandLine) sync(ctx context.Context, token string) error {
	res, err := cli.syncSvc.Sync(ctx, token)
	if err != nil {
		fmt.Fprintf(cli.out, "partial stats: %+v\n", res.Stats)
		return err
	}
	fmt.Fprintf(cli.out, "synchronized in %s\n", res.Duration)
	return cli.printJSON(res.Stats)
}

func (cli *commandLine) populateCells(ctx context.Context) error {
	res, err := cli.cellSvc.Populate(ctx)
	if err != nil {
		return err
	}
	return cli.printJSON(res)
}

// issueToken prints a JWT for the user with the given email, e.g. for calling the API with curl.
func (cli *commandLine) issueToken(email, name string) error {
	usr := user.New(email, name, cli.conf.Dashboard.CoordinatorEmails)
	token, err := user.GenerateToken(user.NewClaims(usr, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	fmt.Fprintf(cli.out, "%s (%s)\n%s\n", usr.Email, usr.Role, token)
	return nil
}
