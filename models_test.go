package jobs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewAuditedRecord(t *testing.T) {
	local := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.FixedZone("CEST", 2*3600))
	rec := newAuditedRecord(local)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, time.UTC, rec.Created.Location())
	assert.Equal(t, rec.Created, rec.Updated)
	assert.True(t, rec.Created.Equal(local.Truncate(time.Microsecond)))

	assert.NotEqual(t, rec.ID, newAuditedRecord(local).ID)
}

func TestAuditedRecordTouch(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := newAuditedRecord(start)

	rec.touch(start.Add(time.Minute))
	assert.Equal(t, start.Add(time.Minute), rec.Updated)
	assert.Equal(t, start, rec.Created)

	rec.touch(start)
	assert.Equal(t, start.Add(time.Minute), rec.Updated, "updated never moves backwards")
}
