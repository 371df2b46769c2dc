package commands

import (
	"context"
)

type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Create a user"`
	Login  UserLoginCmd  `cmd:"" help:"Authenticate a user and print a bearer token"`
	Whoami UserWhoamiCmd `cmd:"" help:"Resolve a bearer token to its user"`
}

type UserCreateCmd struct {
	Username string `arg:"" help:"Email address used to log in"`
	Name     string `help:"Display name" required:""`
	Password string `help:"User password" env:"JOBS_PASSWORD" required:""`
}

func (u *UserCreateCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		user, err := r.users.Create(ctx, u.Username, u.Name, u.Password)
		if err != nil {
			return commandError("create user", err)
		}
		return output(user)
	})
}

type UserLoginCmd struct {
	Username string `arg:"" help:"Email address"`
	Password string `help:"User password" env:"JOBS_PASSWORD" required:""`
}

func (u *UserLoginCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		token, err := r.users.Login(ctx, u.Username, u.Password)
		if err != nil {
			return commandError("login", err)
		}
		return output(token)
	})
}

type UserWhoamiCmd struct {
	Token string `help:"Bearer token" env:"JOBS_TOKEN" required:""`
}

func (u *UserWhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		user, err := r.users.Authorize(ctx, u.Token)
		if err != nil {
			return commandError("whoami", err)
		}
		return output(user)
	})
}
