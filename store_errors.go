package jobs

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// storeFailure is the classification of a raw store error.
type storeFailure int

const (
	storeFailureServer storeFailure = iota
	storeFailureClient
	storeFailureConflict
	storeFailureNotFound
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}

// sqlStateOf extracts the SQLSTATE from either Postgres driver.
func sqlStateOf(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}

	return ""
}

func classifyStoreFailure(err error) storeFailure {
	if isNotFound(err) {
		return storeFailureNotFound
	}

	if code := sqlStateOf(err); code != "" {
		switch {
		case code == pgerrcode.UniqueViolation:
			return storeFailureConflict
		case pgerrcode.IsIntegrityConstraintViolation(code),
			pgerrcode.IsDataException(code):
			return storeFailureClient
		default:
			return storeFailureServer
		}
	}

	// SQLite drivers only expose the constraint in the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return storeFailureConflict
	case strings.Contains(msg, "constraint failed"),
		strings.Contains(msg, "datatype mismatch"):
		return storeFailureClient
	}

	return storeFailureServer
}

// classifyStoreError maps a raw store error onto the taxonomy. The returned
// error carries only the caller supplied subject; the raw error is dropped so
// driver text never reaches the caller. Log it before classifying.
func classifyStoreError(err error, subject string) error {
	if err == nil {
		return nil
	}

	if isTaxonomyError(err) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return goerrors.New(subject+": operation cancelled", goerrors.CategoryInternal).
			WithTextCode(TextCodeServerError).
			WithCode(goerrors.CodeInternal)
	}

	switch classifyStoreFailure(err) {
	case storeFailureNotFound:
		return newNotFoundError(subject + " not found")
	case storeFailureConflict:
		return goerrors.New(subject+" already exists", goerrors.CategoryConflict).
			WithTextCode(TextCodeConflict).
			WithCode(goerrors.CodeConflict)
	case storeFailureClient:
		return newClientError(subject + ": invalid data")
	default:
		return goerrors.New(subject+": store failure", goerrors.CategoryInternal).
			WithTextCode(TextCodeServerError).
			WithCode(goerrors.CodeInternal)
	}
}
