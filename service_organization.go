package jobs

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxNameLength bounds organization and user names.
const MaxNameLength = 255

// OrganizationLookup selects an organization by exactly one key.
type OrganizationLookup struct {
	ID   *uuid.UUID
	Name string
}

func (l OrganizationLookup) validate() error {
	hasID := l.ID != nil
	hasName := strings.TrimSpace(l.Name) != ""
	switch {
	case !hasID && !hasName:
		return newClientError("either id or name must be provided")
	case hasID && hasName:
		return newClientError("both id and name cannot be provided simultaneously")
	}
	return nil
}

func (l OrganizationLookup) String() string {
	if l.ID != nil {
		return l.ID.String()
	}
	return l.Name
}

// OrganizationService creates, retrieves and authenticates organizations.
type OrganizationService struct {
	service
}

// NewOrganizationService wires an OrganizationService to repos.
func NewOrganizationService(repos RepositoryManager, opts ...ServiceOption) *OrganizationService {
	return &OrganizationService{service: newService(repos, opts...)}
}

func validateName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.By(maxRunes(MaxNameLength)),
	)
}

// Create registers an organization. The password policy is checked before
// anything is written.
func (s *OrganizationService) Create(ctx context.Context, name, password string) (*Organization, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, newClientError("invalid organization name: " + err.Error())
	}

	org := &Organization{
		AuditedRecord: newAuditedRecord(s.now()),
		Name:          name,
	}
	if err := org.SetPassword(s.hasher, password); err != nil {
		return nil, s.mapError(err, "organization "+name)
	}

	err := s.runInTx(ctx, "organization "+name, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repos.Organizations().CreateTx(ctx, tx, org)
		if err != nil {
			return err
		}
		org = created
		return nil
	})
	if err != nil {
		s.logger.Info("organization create failed name=%s kind=%s", name, KindOf(err))
		return nil, err
	}

	s.logger.Info("organization created id=%s", org.ID)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventOrganizationCreated,
		Entity:    "organization",
		EntityID:  org.ID,
		Metadata:  map[string]any{"name": org.Name},
	})

	return org, nil
}

// Get loads an organization by id or by name.
func (s *OrganizationService) Get(ctx context.Context, lookup OrganizationLookup) (*Organization, error) {
	if err := lookup.validate(); err != nil {
		return nil, err
	}

	var org *Organization
	err := s.runInTx(ctx, "organization "+lookup.String(), func(ctx context.Context, tx bun.Tx) error {
		var err error
		org, err = s.find(ctx, tx, lookup)
		return err
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) find(ctx context.Context, tx bun.IDB, lookup OrganizationLookup) (*Organization, error) {
	if lookup.ID != nil {
		return findOneBy[Organization](ctx, tx, "id", *lookup.ID)
	}
	// names are stored trimmed
	return findOneBy[Organization](ctx, tx, "name", strings.TrimSpace(lookup.Name))
}

// Authenticate verifies the organization credential. Unknown names and
// wrong passwords fail the same way.
func (s *OrganizationService) Authenticate(ctx context.Context, name, password string) (*Organization, error) {
	var org *Organization
	err := s.runInTx(ctx, "organization "+name, func(ctx context.Context, tx bun.Tx) error {
		var err error
		org, err = s.find(ctx, tx, OrganizationLookup{Name: name})
		return err
	})

	switch {
	case IsNotFoundError(err):
		s.checkCredential(nil, password)
	case err != nil:
		return nil, err
	case s.checkCredential(&org.Credential, password):
		s.logger.Info("organization authenticated id=%s", org.ID)
		s.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginSuccess,
			Entity:    "organization",
			EntityID:  org.ID,
		})
		return org, nil
	}

	s.logger.Info("organization authentication failed")
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		Entity:    "organization",
	})
	return nil, newAuthenticationError()
}

// Login authenticates and issues a bearer token whose subject is the
// organization name.
func (s *OrganizationService) Login(ctx context.Context, name, password string) (Token, error) {
	if err := s.requireTokens(); err != nil {
		return Token{}, err
	}

	org, err := s.Authenticate(ctx, name, password)
	if err != nil {
		return Token{}, err
	}

	token, err := s.tokens.Issue(org.Name)
	if err != nil {
		return Token{}, s.mapError(err, "organization token")
	}
	return token, nil
}

// Authorize resolves a bearer token to the organization it was issued to.
func (s *OrganizationService) Authorize(ctx context.Context, rawToken string) (*Organization, error) {
	if err := s.requireTokens(); err != nil {
		return nil, err
	}

	subject, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, s.authorizationFailure("organization", err)
	}

	org, err := s.Get(ctx, OrganizationLookup{Name: subject})
	switch {
	case IsNotFoundError(err):
		return nil, s.authorizationFailure("organization", err)
	case err != nil:
		return nil, err
	}
	return org, nil
}

// Update is not implemented.
func (s *OrganizationService) Update(context.Context, *Organization) (*Organization, error) {
	return nil, newNotImplementedError("OrganizationService.Update")
}

// Delete is not implemented.
func (s *OrganizationService) Delete(context.Context, uuid.UUID) error {
	return newNotImplementedError("OrganizationService.Delete")
}
