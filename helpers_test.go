package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const testPassword = "Correct-Horse-42!"

// fastHasher keeps tests quick; the format is the production one.
var fastHasher = NewPasswordHasher(WithPBKDF2Rounds(10))

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := OpenDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) Clock {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current := now
		now = now.Add(time.Second)
		return current
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, e ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) types() []ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type testServices struct {
	db           *bun.DB
	repos        RepositoryManager
	tokens       TokenService
	sink         *recordingSink
	orgs         *OrganizationService
	users        *UserService
	jobs         *JobService
	applications *ApplicationService
}

func newTestServices(t *testing.T, opts ...ServiceOption) *testServices {
	t.Helper()

	db := newTestDB(t)
	repos := NewRepositoryManager(db)
	require.NoError(t, repos.Validate())

	tokens := NewTokenService([]byte("test-secret"), time.Hour, WithTokenLogger(NopLogger()))
	sink := &recordingSink{}

	base := []ServiceOption{
		WithLogger(NopLogger()),
		WithPasswordHasher(fastHasher),
		WithTokenService(tokens),
		WithActivitySink(sink),
	}
	base = append(base, opts...)

	return &testServices{
		db:           db,
		repos:        repos,
		tokens:       tokens,
		sink:         sink,
		orgs:         NewOrganizationService(repos, base...),
		users:        NewUserService(repos, base...),
		jobs:         NewJobService(repos, base...),
		applications: NewApplicationService(repos, base...),
	}
}

func (s *testServices) createOrg(t *testing.T, name string) *Organization {
	t.Helper()
	org, err := s.orgs.Create(context.Background(), name, testPassword)
	require.NoError(t, err)
	return org
}

func (s *testServices) createUser(t *testing.T, username string) *User {
	t.Helper()
	user, err := s.users.Create(context.Background(), username, "Test User", testPassword)
	require.NoError(t, err)
	return user
}

func (s *testServices) createJob(t *testing.T, orgID uuid.UUID, title string) *Job {
	t.Helper()
	job, err := s.jobs.Create(context.Background(), CreateJobInput{
		OrganizationID: orgID,
		Title:          title,
		Salary:         5000,
		Mode:           JobModeRemote,
		Contract:       JobContractFullTime,
	})
	require.NoError(t, err)
	return job
}

func (s *testServices) count(t *testing.T, model any) int {
	t.Helper()
	n, err := s.db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	return n
}
