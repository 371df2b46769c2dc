package jobs

import (
	"context"
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxSalary keeps salaries within NUMERIC(10,2).
const MaxSalary = 1e8

// CreateJobInput carries the fields of a new job. State is always the
// lifecycle's initial state.
type CreateJobInput struct {
	OrganizationID uuid.UUID
	Title          string
	Description    string
	Salary         float64
	Mode           JobMode
	Contract       JobContract
}

func validSalary(value interface{}) error {
	salary, _ := value.(float64)
	if math.IsNaN(salary) || math.IsInf(salary, 0) || salary <= 0 || salary >= MaxSalary {
		return fmt.Errorf("invalid salary (must be a positive number): %v", salary)
	}
	return nil
}

func (in CreateJobInput) validate() error {
	err := validation.Errors{
		"title": validation.Validate(in.Title,
			validation.Required,
			validation.By(maxRunes(MaxNameLength)),
		),
		"salary": validation.Validate(in.Salary, validation.By(validSalary)),
		"mode": validation.Validate(in.Mode,
			validation.Required,
			validation.In(JobModeHybrid, JobModeOnSite, JobModeRemote),
		),
		"contract": validation.Validate(in.Contract,
			validation.Required,
			validation.In(JobContractFullTime, JobContractPartTime, JobContractTemporary),
		),
	}.Filter()
	if err != nil {
		return newClientError("invalid job: " + err.Error())
	}
	return nil
}

// JobService creates jobs and moves them through JobLifecycle.
type JobService struct {
	service
}

// NewJobService wires a JobService to repos.
func NewJobService(repos RepositoryManager, opts ...ServiceOption) *JobService {
	return &JobService{service: newService(repos, opts...)}
}

// Create adds a DRAFT job to an existing organization. The organization is
// resolved before the job fields are checked, so a missing organization is
// reported as not found whatever else is wrong with the input.
func (s *JobService) Create(ctx context.Context, in CreateJobInput) (*Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	var job *Job
	err := s.runInTx(ctx, "job", func(ctx context.Context, tx bun.Tx) error {
		if _, err := findOneBy[Organization](ctx, tx, "id", in.OrganizationID); err != nil {
			if isNotFound(err) {
				return newNotFoundError(fmt.Sprintf("organization %s not found", in.OrganizationID))
			}
			return err
		}

		if err := in.validate(); err != nil {
			return err
		}

		created, err := s.repos.Jobs().CreateTx(ctx, tx, &Job{
			AuditedRecord:  newAuditedRecord(s.now()),
			Title:          in.Title,
			Description:    in.Description,
			State:          JobLifecycle.Initial(),
			Salary:         in.Salary,
			Mode:           in.Mode,
			Contract:       in.Contract,
			OrganizationID: in.OrganizationID,
		})
		if err != nil {
			return err
		}
		job = created
		return nil
	})
	if err != nil {
		s.logger.Info("job create failed organization=%s kind=%s", in.OrganizationID, KindOf(err))
		return nil, err
	}

	s.logger.Info("job created id=%s organization=%s", job.ID, job.OrganizationID)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventJobCreated,
		Entity:    "job",
		EntityID:  job.ID,
		ToState:   string(job.State),
		Metadata:  map[string]any{"organization_id": job.OrganizationID.String()},
	})

	return job, nil
}

// Get loads a job by id.
func (s *JobService) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job *Job
	err := s.runInTx(ctx, "job "+id.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		job, err = findOneBy[Job](ctx, tx, "id", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Transition fires trigger on the job. It is the only way a persisted job
// changes state.
func (s *JobService) Transition(ctx context.Context, id uuid.UUID, trigger Trigger) (*Job, error) {
	var (
		job  *Job
		from JobState
	)

	err := s.runInTx(ctx, "job "+id.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		job, err = findOneBy[Job](ctx, tx, "id", id)
		if err != nil {
			return err
		}

		from = job.State
		to, err := JobLifecycle.Apply(from, trigger)
		if err != nil {
			return err
		}

		job.State = to
		job.touch(s.now())
		return updateState(ctx, tx, job, "state", string(from))
	})
	if err != nil {
		s.logger.Info("job transition failed id=%s trigger=%s kind=%s", id, trigger, KindOf(err))
		return nil, err
	}

	s.logger.Info("job transitioned id=%s %s -> %s", job.ID, from, job.State)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventJobStateChanged,
		Entity:    "job",
		EntityID:  job.ID,
		Trigger:   trigger,
		FromState: string(from),
		ToState:   string(job.State),
	})

	return job, nil
}

// Open moves a DRAFT job to OPEN.
func (s *JobService) Open(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.Transition(ctx, id, TriggerOpen)
}

// Close stops an OPEN job from accepting applications.
func (s *JobService) Close(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.Transition(ctx, id, TriggerClose)
}

// Cancel ends a job without hiring.
func (s *JobService) Cancel(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.Transition(ctx, id, TriggerCancel)
}

// Finish ends a job after hiring.
func (s *JobService) Finish(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.Transition(ctx, id, TriggerFinish)
}

// Reopen moves a CLOSED job back to OPEN.
func (s *JobService) Reopen(ctx context.Context, id uuid.UUID) (*Job, error) {
	return s.Transition(ctx, id, TriggerReopen)
}

// Update is not implemented. Use Transition to change the state.
func (s *JobService) Update(context.Context, *Job) (*Job, error) {
	return nil, newNotImplementedError("JobService.Update")
}

// Delete is not implemented.
func (s *JobService) Delete(context.Context, uuid.UUID) error {
	return newNotImplementedError("JobService.Delete")
}

// updateState writes the state and updated columns of model in one
// statement, guarded on the state read in the same transaction. A concurrent
// transition that got there first surfaces as a conflict.
func updateState(ctx context.Context, tx bun.IDB, model any, column, expected string) error {
	res, err := tx.NewUpdate().
		Model(model).
		Column(column, "updated").
		WherePK().
		Where("? = ?", bun.Ident(column), expected).
		Exec(ctx)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return goerrors.New("state changed concurrently, retry", goerrors.CategoryConflict).
			WithTextCode(TextCodeConflict).
			WithCode(goerrors.CodeConflict)
	}
	return nil
}
