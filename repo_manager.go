package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories and the unit of work boundary.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Organizations() repository.Repository[*Organization]
	Users() repository.Repository[*User]
	Jobs() repository.Repository[*Job]
	Applications() repository.Repository[*Application]
}

func NewOrganizationsRepository(db *bun.DB) repository.Repository[*Organization] {
	return repository.NewRepository[*Organization](db, repository.ModelHandlers[*Organization]{
		NewRecord: func() *Organization { return &Organization{} },
		GetID: func(record *Organization) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Organization, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})
}

func NewUsersRepository(db *bun.DB) repository.Repository[*User] {
	return repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(record *User) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *User, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})
}

func NewJobsRepository(db *bun.DB) repository.Repository[*Job] {
	return repository.NewRepository[*Job](db, repository.ModelHandlers[*Job]{
		NewRecord: func() *Job { return &Job{} },
		GetID: func(record *Job) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Job, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})
}

func NewApplicationsRepository(db *bun.DB) repository.Repository[*Application] {
	return repository.NewRepository[*Application](db, repository.ModelHandlers[*Application]{
		NewRecord: func() *Application { return &Application{} },
		GetID: func(record *Application) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Application, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})
}

type mngr struct {
	db            *bun.DB
	organizations repository.Repository[*Organization]
	users         repository.Repository[*User]
	jobs          repository.Repository[*Job]
	applications  repository.Repository[*Application]
}

// NewRepositoryManager wires every repository against db. The caller owns
// the db lifecycle.
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:            db,
		organizations: NewOrganizationsRepository(db),
		users:         NewUsersRepository(db),
		jobs:          NewJobsRepository(db),
		applications:  NewApplicationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager requires a database")
	}
	if m.organizations == nil {
		return errors.New("repository organizations should be initialized")
	}
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}
	if m.jobs == nil {
		return errors.New("repository jobs should be initialized")
	}
	if m.applications == nil {
		return errors.New("repository applications should be initialized")
	}
	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// RunInTx runs f in a single transaction: commit when f returns nil,
// rollback on error or panic.
func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Organizations() repository.Repository[*Organization] {
	return m.organizations
}

func (m mngr) Users() repository.Repository[*User] {
	return m.users
}

func (m mngr) Jobs() repository.Repository[*Job] {
	return m.jobs
}

func (m mngr) Applications() repository.Repository[*Application] {
	return m.applications
}

// findOneBy loads the single record of T whose column equals value.
func findOneBy[T any](ctx context.Context, tx bun.IDB, column string, value any) (*T, error) {
	record := new(T)
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}
