package jobs

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserLookup selects a user by exactly one key.
type UserLookup struct {
	ID       *uuid.UUID
	Username string
}

func (l UserLookup) validate() error {
	hasID := l.ID != nil
	hasUsername := strings.TrimSpace(l.Username) != ""
	switch {
	case !hasID && !hasUsername:
		return newClientError("either id or username must be provided")
	case hasID && hasUsername:
		return newClientError("both id and username cannot be provided simultaneously")
	}
	return nil
}

func (l UserLookup) String() string {
	if l.ID != nil {
		return l.ID.String()
	}
	return l.Username
}

// NormalizeUsername trims the address and lower cases its domain. The local
// part is kept as given.
func NormalizeUsername(username string) string {
	username = strings.TrimSpace(username)
	at := strings.LastIndex(username, "@")
	if at < 0 {
		return username
	}
	return username[:at] + "@" + strings.ToLower(username[at+1:])
}

func validateUsername(username string) error {
	return validation.Validate(username,
		validation.Required,
		validation.By(maxRunes(MaxNameLength)),
		is.Email,
	)
}

// UserService creates, retrieves and authenticates users.
type UserService struct {
	service
}

// NewUserService wires a UserService to repos.
func NewUserService(repos RepositoryManager, opts ...ServiceOption) *UserService {
	return &UserService{service: newService(repos, opts...)}
}

// Create registers a user whose username is an email address.
func (s *UserService) Create(ctx context.Context, username, name, password string) (*User, error) {
	username = NormalizeUsername(username)
	if err := validateUsername(username); err != nil {
		return nil, newClientError("invalid username: " + err.Error())
	}

	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, newClientError("invalid user name: " + err.Error())
	}

	user := &User{
		AuditedRecord: newAuditedRecord(s.now()),
		Name:          name,
		Username:      username,
	}
	if err := user.SetPassword(s.hasher, password); err != nil {
		return nil, s.mapError(err, "user "+username)
	}

	err := s.runInTx(ctx, "user "+username, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repos.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		s.logger.Info("user create failed kind=%s", KindOf(err))
		return nil, err
	}

	s.logger.Info("user created id=%s", user.ID)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventUserCreated,
		Entity:    "user",
		EntityID:  user.ID,
	})

	return user, nil
}

// Get loads a user by id or by username.
func (s *UserService) Get(ctx context.Context, lookup UserLookup) (*User, error) {
	if err := lookup.validate(); err != nil {
		return nil, err
	}

	var user *User
	err := s.runInTx(ctx, "user "+lookup.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = s.find(ctx, tx, lookup)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) find(ctx context.Context, tx bun.IDB, lookup UserLookup) (*User, error) {
	if lookup.ID != nil {
		return findOneBy[User](ctx, tx, "id", *lookup.ID)
	}
	return findOneBy[User](ctx, tx, "username", NormalizeUsername(lookup.Username))
}

// Authenticate verifies the user credential. Unknown usernames and wrong
// passwords fail the same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var user *User
	err := s.runInTx(ctx, "user", func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = s.find(ctx, tx, UserLookup{Username: username})
		return err
	})

	switch {
	case IsNotFoundError(err):
		s.checkCredential(nil, password)
	case err != nil:
		return nil, err
	case s.checkCredential(&user.Credential, password):
		s.logger.Info("user authenticated id=%s", user.ID)
		s.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginSuccess,
			Entity:    "user",
			EntityID:  user.ID,
		})
		return user, nil
	}

	s.logger.Info("user authentication failed")
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		Entity:    "user",
	})
	return nil, newAuthenticationError()
}

// Login authenticates and issues a bearer token whose subject is the
// username.
func (s *UserService) Login(ctx context.Context, username, password string) (Token, error) {
	if err := s.requireTokens(); err != nil {
		return Token{}, err
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return Token{}, s.mapError(err, "user token")
	}
	return token, nil
}

// Authorize resolves a bearer token to the user it was issued to.
func (s *UserService) Authorize(ctx context.Context, rawToken string) (*User, error) {
	if err := s.requireTokens(); err != nil {
		return nil, err
	}

	subject, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, s.authorizationFailure("user", err)
	}

	user, err := s.Get(ctx, UserLookup{Username: subject})
	switch {
	case IsNotFoundError(err):
		return nil, s.authorizationFailure("user", err)
	case err != nil:
		return nil, err
	}
	return user, nil
}

// Update is not implemented.
func (s *UserService) Update(context.Context, *User) (*User, error) {
	return nil, newNotImplementedError("UserService.Update")
}

// Delete is not implemented.
func (s *UserService) Delete(context.Context, uuid.UUID) error {
	return newNotImplementedError("UserService.Delete")
}
