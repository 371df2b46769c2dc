package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-jobs/cmd/jobsctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Schema      commands.SchemaCmd      `cmd:"" help:"Create tables and indexes"`
		Org         commands.OrgCmd         `cmd:"" help:"Manage organizations"`
		User        commands.UserCmd        `cmd:"" help:"Manage users"`
		Job         commands.JobCmd         `cmd:"" help:"Manage jobs"`
		Application commands.ApplicationCmd `cmd:"" help:"Manage applications"`
		Debug       bool                    `help:"Enable debug mode." env:"JOBS_DEBUG"`
		Version     kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("jobsctl"),
		kong.Description("Operate the jobs core: organizations, users, jobs and applications."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
