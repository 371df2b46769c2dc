package commands

import (
	"context"
	"fmt"

	jobs "github.com/goliatone/go-jobs"
)

type SchemaCmd struct{}

func (s *SchemaCmd) Run(ctx context.Context, globals *Globals) error {
	return withRuntime(globals, func(r *runtime) error {
		if err := jobs.CreateSchema(ctx, r.db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		r.log.Info().Msg("schema ready")
		return nil
	})
}
