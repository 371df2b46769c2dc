package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditedRecord carries the identity and timestamps shared by every entity.
type AuditedRecord struct {
	ID      uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Created time.Time `bun:"created,notnull" json:"created"`
	Updated time.Time `bun:"updated,notnull" json:"updated"`
}

func newAuditedRecord(now time.Time) AuditedRecord {
	now = now.UTC().Truncate(time.Microsecond)
	return AuditedRecord{
		ID:      uuid.New(),
		Created: now,
		Updated: now,
	}
}

// touch records a mutation. Updated never moves backwards.
func (r *AuditedRecord) touch(now time.Time) {
	now = now.UTC().Truncate(time.Microsecond)
	if now.Before(r.Updated) {
		return
	}
	r.Updated = now
}

// Organization publishes jobs and authenticates with its name.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`
	AuditedRecord
	Credential
	Name string `bun:"name,notnull,unique" json:"name"`
}

// User applies to jobs and authenticates with its username (an email).
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	AuditedRecord
	Credential
	Name     string `bun:"name,notnull" json:"name"`
	Username string `bun:"username,notnull,unique" json:"username"`
}

// JobMode is where the work happens.
type JobMode string

const (
	JobModeHybrid JobMode = "HYBRID"
	JobModeOnSite JobMode = "ON_SITE"
	JobModeRemote JobMode = "REMOTE"
)

// JobContract is the kind of contract offered.
type JobContract string

const (
	JobContractFullTime  JobContract = "FULL_TIME"
	JobContractPartTime  JobContract = "PART_TIME"
	JobContractTemporary JobContract = "TEMPORARY"
)

// Job is a posting that belongs to exactly one Organization.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:job"`
	AuditedRecord
	Title          string      `bun:"title,notnull" json:"title"`
	Description    string      `bun:"description,nullzero" json:"description,omitempty"`
	State          JobState    `bun:"state,notnull" json:"state"`
	Salary         float64     `bun:"salary,notnull" json:"salary"`
	Mode           JobMode     `bun:"mode,notnull" json:"mode"`
	Contract       JobContract `bun:"contract,notnull" json:"contract"`
	OrganizationID uuid.UUID   `bun:"organization_id,notnull,type:uuid" json:"organization_id"`
}

// Application links a User to a Job.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`
	AuditedRecord
	State  ApplicationState `bun:"state,notnull" json:"state"`
	JobID  uuid.UUID        `bun:"job_id,notnull,type:uuid" json:"job_id"`
	UserID uuid.UUID        `bun:"user_id,notnull,type:uuid" json:"user_id"`
}
