package pgutil

import (
	"errors"
	"testing"

	"cartify/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		in   error
		kind domain.Kind
		is   error
	}{
		{name: "no rows", in: pgx.ErrNoRows, kind: domain.KindNotFound, is: domain.ErrNotFound},
		{name: "unique", in: &pgconn.PgError{Code: "23505"}, kind: domain.KindInternal, is: domain.ErrAlreadyExists},
		{name: "fk", in: &pgconn.PgError{Code: "23503"}, kind: domain.KindValidation},
		{name: "bad uuid", in: &pgconn.PgError{Code: "22P02"}, kind: domain.KindNotFound, is: domain.ErrNotFound},
		{name: "out of range", in: &pgconn.PgError{Code: "22003"}, kind: domain.KindValidation},
		{name: "raise", in: &pgconn.PgError{Code: "P0001", Message: "cart is empty"}, kind: domain.KindValidation},
		{name: "other", in: boom, kind: domain.KindInternal, is: boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.in)
			if k := domain.KindOf(got); k != tc.kind {
				t.Fatalf("expected kind %s, got %s (%v)", tc.kind, k, got)
			}
			if tc.is != nil && !errors.Is(got, tc.is) {
				t.Fatalf("expected %v, got %v", tc.is, got)
			}
		})
	}

	var de *domain.Error
	if !errors.As(MapError(&pgconn.PgError{Code: "P0001", Message: "cart is empty"}), &de) || de.Message != "cart is empty" {
		t.Fatalf("expected procedure message to surface, got %v", de)
	}
	if MapError(nil) != nil {
		t.Fatalf("expected nil")
	}
}
