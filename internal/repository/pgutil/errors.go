package pgutil

import (
	"errors"

	"cartify/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
	codeRaiseException      = "P0001"
)

// MapError translates driver errors into domain errors. Unrecognised errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.ErrAlreadyExists
	case codeForeignKeyViolation:
		return domain.Validation("referenced record does not exist")
	case codeInvalidText:
		// malformed uuid in a lookup: nothing can match it
		return domain.ErrNotFound
	case codeNumericOutOfRange:
		return domain.Validation("value out of range")
	case codeRaiseException:
		return domain.Validation(pgErr.Message)
	}
	return err
}
