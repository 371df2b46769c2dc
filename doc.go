// Package jobs is the lifecycle and credential core of a job board.
//
// Entities:
//   - Organization and User are principals. Both embed Credential, a write-only
//     salted password hash, and authenticate with a natural key (organization
//     name or normalized username).
//   - Job belongs to one Organization and moves through JobLifecycle.
//     Application links a User to a Job and starts in ApplicationLifecycle's
//     initial state.
//
// Lifecycles:
//   - StateMachine is a declarative transition table. Apply never mutates the
//     entity; services persist the new state with a guard on the previous one
//     so concurrent transitions surface as conflicts.
//   - Extend returns a copy with additional transitions. Use
//     WithApplicationLifecycle to plug an extended application lifecycle into
//     ApplicationService.
//
// Services:
//   - OrganizationService, UserService, JobService and ApplicationService run
//     every operation inside one store transaction. Failures are classified into
//     the ErrorKind taxonomy (client, conflict, not found, authentication,
//     not implemented, server) and never leak raw store text.
//   - Login issues a bearer token whose subject is the principal's natural key.
//     Authorize resolves a token back to the principal.
//
// Activity sinks:
//   - ActivitySink receives entity creation, state change and login events
//     after commit. Sinks run best-effort; their errors are logged.
package jobs
