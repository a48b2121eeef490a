package sqlstore

import (
	"errors"
	"testing"

	catalog "asset-catalog/internal/catalog/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassifyPostgresErrors(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", catalog.ErrConstraintViolation},
		{"23503", catalog.ErrConstraintViolation},
		{"22003", catalog.ErrInvalidRecord},
		{"22P02", catalog.ErrInvalidRecord},
		{"42P01", catalog.ErrStorageUnavailable},
	}
	for _, tc := range cases {
		err := classify("insert furniture", &pgconn.PgError{Code: tc.code, Message: "x"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("code %s: expected %v, got %v", tc.code, tc.want, err)
		}
	}

	plain := errors.New("connection reset")
	err := classify("insert furniture", plain)
	if !errors.Is(err, plain) || errors.Is(err, catalog.ErrInvalidRecord) {
		t.Fatalf("unexpected classification %v", err)
	}
}
