package repository

import (
	"errors"
	"testing"

	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapErrorKinds(t *testing.T) {
	cases := []struct {
		code string
		want apperr.Kind
	}{
		{codeSerializationFailure, apperr.KindConcurrencyConflict},
		{codeDeadlockDetected, apperr.KindConcurrencyConflict},
		{codeLockNotAvailable, apperr.KindConcurrencyConflict},
		{codeUniqueViolation, apperr.KindConflict},
		{codeForeignKeyViolation, apperr.KindValidation},
	}
	for _, tc := range cases {
		err := mapError("op", &pgconn.PgError{Code: tc.code})
		if got := apperr.GetKind(err); got != tc.want {
			t.Fatalf("code %s: expected %s, got %s", tc.code, tc.want, got)
		}
	}
}

func TestMapErrorKeepsDomainErrors(t *testing.T) {
	domainErr := apperr.InvalidState("quote is not sent")
	if err := mapError("op", domainErr); err != domainErr {
		t.Fatalf("expected domain error unchanged, got %v", err)
	}
	if err := mapError("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	plain := errors.New("boom")
	if err := mapError("op", plain); !errors.Is(err, plain) || apperr.GetKind(err) != apperr.KindUnknown {
		t.Fatalf("expected wrapped plain error, got %v", err)
	}
}

func TestClientEmailRaceIsConcurrencyConflict(t *testing.T) {
	err := clientSaveError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: clientEmailIndex})
	if !apperr.Is(err, apperr.KindConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected driver error kept in chain")
	}

	if err := clientSaveError(&pgconn.PgError{Code: codeForeignKeyViolation}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation for foreign key, got %v", err)
	}
	if err := clientSaveError(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNotFoundOr(t *testing.T) {
	if err := notFoundOr(pgx.ErrNoRows, "quote not found", "load"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWhereBuilder(t *testing.T) {
	w := &whereBuilder{}
	if w.sql() != "" {
		t.Fatalf("expected empty where clause")
	}

	w.add("status = %s", "paid")
	w.add("(number ILIKE %[1]s OR client_name ILIKE %[1]s)", "%INV%")
	if got := w.sql(); got != " WHERE status = $1 AND (number ILIKE $2 OR client_name ILIKE $2)" {
		t.Fatalf("unexpected where clause: %q", got)
	}

	page := w.page(ports.Page{Offset: 40, Limit: 20}, "created_at DESC")
	if page != " ORDER BY created_at DESC LIMIT $3 OFFSET $4" {
		t.Fatalf("unexpected page clause: %q", page)
	}
	if len(w.args) != 4 || w.args[2] != 20 || w.args[3] != 40 {
		t.Fatalf("unexpected args: %v", w.args)
	}
}
