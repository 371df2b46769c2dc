package jobs

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ServiceOption customizes a service.
type ServiceOption func(*service)

// WithLogger overrides the default stdout logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects the clock used for created and updated timestamps.
func WithClock(clock Clock) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithPasswordHasher overrides the default PBKDF2 hasher.
func WithPasswordHasher(hasher PasswordHasher) ServiceOption {
	return func(s *service) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithTokenService enables Login and Authorize.
func WithTokenService(tokens TokenService) ServiceOption {
	return func(s *service) {
		if tokens != nil {
			s.tokens = tokens
		}
	}
}

// WithActivitySink records business events after each commit.
func WithActivitySink(sink ActivitySink) ServiceOption {
	return func(s *service) {
		s.activity = normalizeActivitySink(sink)
	}
}

// WithApplicationLifecycle replaces the application transition table,
// typically with ApplicationLifecycle.Extend(...).
func WithApplicationLifecycle(sm *StateMachine[ApplicationState]) ServiceOption {
	return func(s *service) {
		if sm != nil {
			s.applications = sm
		}
	}
}

// service holds what every entity service shares. Each operation runs in
// its own unit of work obtained from repos.
type service struct {
	repos        RepositoryManager
	logger       Logger
	now          Clock
	hasher       PasswordHasher
	tokens       TokenService
	activity     ActivitySink
	applications *StateMachine[ApplicationState]
}

func newService(repos RepositoryManager, opts ...ServiceOption) service {
	s := service{
		repos:        repos,
		logger:       defLogger{},
		now:          utcNow,
		hasher:       NewPasswordHasher(),
		activity:     noopActivitySink{},
		applications: ApplicationLifecycle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// runInTx runs fn in one transaction and maps whatever fails onto the
// error taxonomy. The transaction is always rolled back on failure.
func (s service) runInTx(ctx context.Context, subject string, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := s.repos.RunInTx(ctx, nil, fn)
	if err == nil {
		return nil
	}
	return s.mapError(err, subject)
}

func (s service) mapError(err error, subject string) error {
	if mapped := asDomainError(err); mapped != nil {
		return mapped
	}

	if isTaxonomyError(err) {
		return err
	}

	mapped := classifyStoreError(err, subject)
	if IsServerError(mapped) {
		s.logger.Error("%s: %v", subject, err)
	} else {
		s.logger.Debug("%s: %s: %v", subject, KindOf(mapped), err)
	}
	return mapped
}

func (s service) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.activity.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink failed for %s: %v", event.EventType, err)
	}
}

func (s service) requireTokens() error {
	if s.tokens == nil {
		return goerrors.New("token service not configured", goerrors.CategoryInternal).
			WithTextCode(TextCodeServerError)
	}
	return nil
}

// authorizationFailure collapses every token or subject problem into the
// same denial, logging the cause at debug level.
func (s service) authorizationFailure(entity string, cause error) error {
	s.logger.Debug("%s authorization failed: %v", entity, cause)
	return newAuthenticationError()
}

// dummyHash is verified when the identity does not exist so both failure
// paths cost the same.
var dummyHash = func() string {
	hash, err := NewPBKDF2Hasher().HashPassword("Dummy-Password-1234!")
	if err != nil {
		panic(err)
	}
	return hash
}()

func (s service) checkCredential(cred *Credential, password string) bool {
	if cred == nil {
		_ = s.hasher.ComparePasswordAndHash(password, dummyHash)
		return false
	}
	return cred.CheckPassword(s.hasher, password)
}
