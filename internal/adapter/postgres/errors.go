package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/pinyin-dict/internal/domain"
)

// sqlStateErrors maps SQLSTATE codes raised by the syllabifications table
// constraints to domain sentinels.
var sqlStateErrors = map[string]error{
	"23502": domain.ErrValidation,    // not_null_violation
	"23505": domain.ErrAlreadyExists, // unique_violation (run_id, pinyin_key, entry)
	"23514": domain.ErrValidation,    // check_violation on mode
}

// MapError prefixes err with the entity and key it concerns and, where the
// driver error has a domain meaning, swaps it for the domain sentinel.
// Context errors and unknown errors stay in the chain.
func MapError(err error, entity, key string) error {
	if err == nil {
		return nil
	}

	target := err
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
	case errors.Is(err, pgx.ErrNoRows):
		target = domain.ErrNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if mapped, ok := sqlStateErrors[pgErr.Code]; ok {
				target = mapped
			}
		}
	}

	return fmt.Errorf("%s %s: %w", entity, key, target)
}
