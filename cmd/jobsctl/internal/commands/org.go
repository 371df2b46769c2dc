package commands

import (
	"context"
)

type OrgCmd struct {
	Create OrgCreateCmd `cmd:"" help:"Create an organization"`
	Login  OrgLoginCmd  `cmd:"" help:"Authenticate an organization and print a bearer token"`
	Whoami OrgWhoamiCmd `cmd:"" help:"Resolve a bearer token to its organization"`
}

type OrgCreateCmd struct {
	Name     string `arg:"" help:"Organization name"`
	Password string `help:"Organization password" env:"JOBS_PASSWORD" required:""`
}

func (o *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		org, err := r.orgs.Create(ctx, o.Name, o.Password)
		if err != nil {
			return commandError("create organization", err)
		}
		return output(org)
	})
}

type OrgLoginCmd struct {
	Name     string `arg:"" help:"Organization name"`
	Password string `help:"Organization password" env:"JOBS_PASSWORD" required:""`
}

func (o *OrgLoginCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		token, err := r.orgs.Login(ctx, o.Name, o.Password)
		if err != nil {
			return commandError("login", err)
		}
		return output(token)
	})
}

type OrgWhoamiCmd struct {
	Token string `help:"Bearer token" env:"JOBS_TOKEN" required:""`
}

func (o *OrgWhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		org, err := r.orgs.Authorize(ctx, o.Token)
		if err != nil {
			return commandError("whoami", err)
		}
		return output(org)
	})
}
