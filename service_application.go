package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ApplicationService links users to jobs.
type ApplicationService struct {
	service
}

// NewApplicationService wires an ApplicationService to repos. Without
// WithApplicationLifecycle every Transition fails since ApplicationLifecycle
// declares no transitions.
func NewApplicationService(repos RepositoryManager, opts ...ServiceOption) *ApplicationService {
	return &ApplicationService{service: newService(repos, opts...)}
}

// Lifecycle returns the transition table in use.
func (s *ApplicationService) Lifecycle() *StateMachine[ApplicationState] {
	return s.applications
}

// Create records that user applied to job. Both must exist; a nil id is
// reported as not found like any other unknown reference.
func (s *ApplicationService) Create(ctx context.Context, jobID, userID uuid.UUID) (*Application, error) {
	app := &Application{
		AuditedRecord: newAuditedRecord(s.now()),
		State:         s.applications.Initial(),
		JobID:         jobID,
		UserID:        userID,
	}

	err := s.runInTx(ctx, "application", func(ctx context.Context, tx bun.Tx) error {
		if _, err := findOneBy[Job](ctx, tx, "id", jobID); err != nil {
			if isNotFound(err) {
				return newNotFoundError(fmt.Sprintf("job %s not found", jobID))
			}
			return err
		}

		if _, err := findOneBy[User](ctx, tx, "id", userID); err != nil {
			if isNotFound(err) {
				return newNotFoundError(fmt.Sprintf("user %s not found", userID))
			}
			return err
		}

		created, err := s.repos.Applications().CreateTx(ctx, tx, app)
		if err != nil {
			return err
		}
		app = created
		return nil
	})
	if err != nil {
		s.logger.Info("application create failed job=%s kind=%s", jobID, KindOf(err))
		return nil, err
	}

	s.logger.Info("application created id=%s job=%s", app.ID, app.JobID)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventApplicationCreated,
		Entity:    "application",
		EntityID:  app.ID,
		ToState:   string(app.State),
		Metadata: map[string]any{
			"job_id":  app.JobID.String(),
			"user_id": app.UserID.String(),
		},
	})

	return app, nil
}

// Get loads an application by id.
func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	var app *Application
	err := s.runInTx(ctx, "application "+id.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		app, err = findOneBy[Application](ctx, tx, "id", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Transition fires trigger on the application using the configured
// lifecycle.
func (s *ApplicationService) Transition(ctx context.Context, id uuid.UUID, trigger Trigger) (*Application, error) {
	var (
		app  *Application
		from ApplicationState
	)

	err := s.runInTx(ctx, "application "+id.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		app, err = findOneBy[Application](ctx, tx, "id", id)
		if err != nil {
			return err
		}

		from = app.State
		to, err := s.applications.Apply(from, trigger)
		if err != nil {
			return err
		}

		app.State = to
		app.touch(s.now())
		return updateState(ctx, tx, app, "state", string(from))
	})
	if err != nil {
		s.logger.Info("application transition failed id=%s trigger=%s kind=%s", id, trigger, KindOf(err))
		return nil, err
	}

	s.logger.Info("application transitioned id=%s %s -> %s", app.ID, from, app.State)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventApplicationStateChanged,
		Entity:    "application",
		EntityID:  app.ID,
		Trigger:   trigger,
		FromState: string(from),
		ToState:   string(app.State),
	})

	return app, nil
}

// Update is not implemented.
func (s *ApplicationService) Update(context.Context, *Application) (*Application, error) {
	return nil, newNotImplementedError("ApplicationService.Update")
}

// Delete is not implemented.
func (s *ApplicationService) Delete(context.Context, uuid.UUID) error {
	return newNotImplementedError("ApplicationService.Delete")
}
