package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestPGCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"pgx", &pgconn.PgError{Code: PGUniqueViolation}, PGUniqueViolation},
		{"wrapped pgx", fmt.Errorf("insert: %w", &pgconn.PgError{Code: PGForeignKeyViolation}), PGForeignKeyViolation},
		{"lib/pq", &pq.Error{Code: "23P01"}, PGExclusionViolation},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PGCode(tt.err); got != tt.want {
				t.Errorf("PGCode = %q, want %q", got, tt.want)
			}
		})
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: PGUniqueViolation}) {
		t.Error("IsUniqueViolation false for 23505")
	}
}
