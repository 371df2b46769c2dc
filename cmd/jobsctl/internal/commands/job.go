package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	jobs "github.com/goliatone/go-jobs"
)

type JobCmd struct {
	Create     JobCreateCmd     `cmd:"" help:"Create a DRAFT job for the authenticated organization"`
	Get        JobGetCmd        `cmd:"" help:"Show a job"`
	Transition JobTransitionCmd `cmd:"" help:"Fire a lifecycle trigger (open, close, cancel, finish, reopen)"`
}

type JobCreateCmd struct {
	Token       string  `help:"Organization bearer token" env:"JOBS_TOKEN" required:""`
	Title       string  `arg:"" help:"Job title"`
	Description string  `help:"Job description"`
	Salary      float64 `help:"Yearly salary" required:""`
	Mode        string  `help:"Work mode" enum:"HYBRID,ON_SITE,REMOTE" default:"ON_SITE"`
	Contract    string  `help:"Contract type" enum:"FULL_TIME,PART_TIME,TEMPORARY" default:"FULL_TIME"`
}

func (j *JobCreateCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		org, err := r.orgs.Authorize(ctx, j.Token)
		if err != nil {
			return commandError("create job", err)
		}

		job, err := r.jobs.Create(ctx, jobs.CreateJobInput{
			OrganizationID: org.ID,
			Title:          j.Title,
			Description:    j.Description,
			Salary:         j.Salary,
			Mode:           jobs.JobMode(j.Mode),
			Contract:       jobs.JobContract(j.Contract),
		})
		if err != nil {
			return commandError("create job", err)
		}
		return output(job)
	})
}

type JobGetCmd struct {
	ID uuid.UUID `arg:"" help:"Job id"`
}

func (j *JobGetCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		job, err := r.jobs.Get(ctx, j.ID)
		if err != nil {
			return commandError("get job", err)
		}
		return output(job)
	})
}

type JobTransitionCmd struct {
	Token   string    `help:"Bearer token of the owning organization" env:"JOBS_TOKEN" required:""`
	ID      uuid.UUID `arg:"" help:"Job id"`
	Trigger string    `arg:"" help:"Lifecycle trigger"`
}

func (j *JobTransitionCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		org, err := r.orgs.Authorize(ctx, j.Token)
		if err != nil {
			return commandError("transition job", err)
		}

		job, err := r.jobs.Get(ctx, j.ID)
		if err != nil {
			return commandError("transition job", err)
		}
		if job.OrganizationID != org.ID {
			return fmt.Errorf("transition job: job %s does not belong to %s", job.ID, org.Name)
		}

		job, err = r.jobs.Transition(ctx, j.ID, jobs.Trigger(j.Trigger))
		if err != nil {
			return commandError("transition job", err)
		}
		return output(job)
	})
}
