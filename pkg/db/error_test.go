package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres_other", err: &pgconn.PgError{Code: "40001"}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: rent_month_records.offer_id"), want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDuplicateKeyErr(tc.err); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsDuplicateKeyErrMySQL(t *testing.T) {
	if !IsDuplicateKeyErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Fatal("expected mysql 1062 to be a duplicate key")
	}
	if IsDuplicateKeyErr(&mysql.MySQLError{Number: 1213}) {
		t.Fatal("deadlock is not a duplicate key")
	}
}

func TestIsRetryableTxErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: &pgconn.PgError{Code: "40001"}, want: true},
		{err: fmt.Errorf("verify: %w", &pgconn.PgError{Code: "23505"}), want: false},
		{err: &mysql.MySQLError{Number: 1213}, want: true},
		{err: errors.New("database is locked"), want: true},
		{err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		if got := IsRetryableTxErr(tc.err); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.want, got)
		}
	}
}
