package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenDB opens the store named by dsn. postgres:// and postgresql:// URLs
// use the Postgres dialect, anything else is handed to SQLite.
func OpenDB(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open db: empty dsn")
	}

	if isPostgresDSN(dsn) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// in memory databases live as long as their single connection
	if strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:") {
		sqldb.SetMaxOpenConns(1)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// CreateSchema creates the tables and indexes when they are missing. It is
// safe to call on every start.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model any
		fks   []string
	}{
		{model: (*Organization)(nil)},
		{model: (*User)(nil)},
		{
			model: (*Job)(nil),
			fks:   []string{`("organization_id") REFERENCES "organizations" ("id")`},
		},
		{
			model: (*Application)(nil),
			fks: []string{
				`("job_id") REFERENCES "jobs" ("id")`,
				`("user_id") REFERENCES "users" ("id")`,
			},
		},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", t.model, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*Job)(nil), "jobs_state_idx", "state"},
		{(*Job)(nil), "jobs_title_idx", "title"},
		{(*Job)(nil), "jobs_organization_id_idx", "organization_id"},
		{(*Application)(nil), "applications_state_idx", "state"},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}
