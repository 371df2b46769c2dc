package commands

import (
	"context"

	"github.com/google/uuid"
)

type ApplicationCmd struct {
	Create ApplicationCreateCmd `cmd:"" help:"Apply the authenticated user to a job"`
	Get    ApplicationGetCmd    `cmd:"" help:"Show an application"`
}

type ApplicationCreateCmd struct {
	Token string    `help:"User bearer token" env:"JOBS_TOKEN" required:""`
	JobID uuid.UUID `arg:"" help:"Job id"`
}

func (a *ApplicationCreateCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		user, err := r.users.Authorize(ctx, a.Token)
		if err != nil {
			return commandError("create application", err)
		}

		app, err := r.applications.Create(ctx, a.JobID, user.ID)
		if err != nil {
			return commandError("create application", err)
		}
		return output(app)
	})
}

type ApplicationGetCmd struct {
	ID uuid.UUID `arg:"" help:"Application id"`
}

func (a *ApplicationGetCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		app, err := r.applications.Get(ctx, a.ID)
		if err != nil {
			return commandError("get application", err)
		}
		return output(app)
	})
}
