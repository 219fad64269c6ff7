package core_test

import (
	"errors"
	"fmt"
	"testing"

	"stock-ledger/internal/core"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"serialization failure is conflict, not transient", &pgconn.PgError{Code: "40001"}, false},
		{"already classified", fmt.Errorf("%w: socket closed", core.ErrTransient), true},
		{"wrapped pg error", fmt.Errorf("query: %w", &pgconn.PgError{Code: "08001"}), true},
		{"validation", core.ErrValidation, false},
		{"not found", core.ErrNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := core.IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestTaxonomySentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		core.ErrNotFound, core.ErrValidation, core.ErrConflict,
		core.ErrTransient, core.ErrPartialFailure,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("Sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
