package commands

import (
	"context"
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	jobs "github.com/goliatone/go-jobs"
)

type Globals struct {
	Debug   bool
	Version string
}

// runtime is everything a command needs, built from the environment.
type runtime struct {
	cfg          *jobs.Config
	log          zerolog.Logger
	db           *bun.DB
	orgs         *jobs.OrganizationService
	users        *jobs.UserService
	jobs         *jobs.JobService
	applications *jobs.ApplicationService
}

func (g *Globals) open() (*runtime, error) {
	cfg, err := jobs.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := jobs.SetupZerolog(g.Debug || cfg.GetDebug()).With().Str("app", cfg.GetAppName()).Logger()

	db, err := jobs.OpenDB(cfg.GetDatabaseURL())
	if err != nil {
		return nil, err
	}

	tokens, err := cfg.TokenService(jobs.WithTokenLogger(jobs.NewZerologLogger(log)))
	if err != nil {
		db.Close()
		return nil, err
	}

	opts := []jobs.ServiceOption{
		jobs.WithLogger(jobs.NewZerologLogger(log)),
		jobs.WithPasswordHasher(cfg.PasswordHasher()),
		jobs.WithTokenService(tokens),
		jobs.WithActivitySink(jobs.ActivitySinkFunc(func(_ context.Context, e jobs.ActivityEvent) error {
			log.Debug().
				Str("event", string(e.EventType)).
				Str("entity", e.Entity).
				Str("id", e.EntityID.String()).
				Str("from", e.FromState).
				Str("to", e.ToState).
				Time("at", e.OccurredAt).
				Msg("activity")
			return nil
		})),
	}

	repos := jobs.NewRepositoryManager(db)
	if err := repos.Validate(); err != nil {
		db.Close()
		return nil, err
	}

	return &runtime{
		cfg:          cfg,
		log:          log,
		db:           db,
		orgs:         jobs.NewOrganizationService(repos, opts...),
		users:        jobs.NewUserService(repos, opts...),
		jobs:         jobs.NewJobService(repos, opts...),
		applications: jobs.NewApplicationService(repos, opts...),
	}, nil
}

func (r *runtime) Close() error {
	return r.db.Close()
}

// withRuntime opens the runtime for the duration of fn.
func withRuntime(g *Globals, fn func(r *runtime) error) error {
	r, err := g.open()
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

func output(v any) error {
	fmt.Println(print.MaybePrettyJSON(v))
	return nil
}

// commandError prefixes err with its taxonomy kind, e.g. "conflict: ...".
func commandError(action string, err error) error {
	return fmt.Errorf("%s: %s: %w", action, jobs.KindOf(err), err)
}
