package pg

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clinic-api/internal/shared"
)

// ClassifyError maps a raw storage error to an error kind. The second
// return value reports whether the error came from the storage layer at
// all; callers must not treat ok=false as "no error".
//
// Classification is deterministic: SQLSTATE is consulted first because it is
// the reliable signal pgx gives us; message sniffing is only a fallback for
// errors that lost their pgconn type (driver-dependent and fragile, which is
// why the whole function is injected into the error router as a value; a
// different backend replaces it wholesale). Sniffing order is fixed:
// duplicate/unique before foreign key before generic.
func ClassifyError(err error) (shared.Kind, bool) {
	if err == nil {
		return shared.Success, false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return shared.DuplicateKeyError, true
		case pgErr.Code == "23503":
			return shared.ForeignKeyError, true
		case strings.HasPrefix(pgErr.Code, "23"):
			return shared.DatabaseError, true
		case strings.HasPrefix(pgErr.Code, "08"):
			return shared.DatabaseConnectionError, true
		default:
			return shared.DatabaseError, true
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return shared.DatabaseConnectionError, true
	}

	if errors.Is(err, pgx.ErrNoRows) {
		// Repositories translate no-rows themselves; reaching the boundary
		// untranslated is a repository bug, reported as a database error.
		return shared.DatabaseError, true
	}

	if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, pgx.ErrTxCommitRollback) {
		return shared.DatabaseError, true
	}

	msg := strings.ToLower(err.Error())
	if !looksLikeStorageError(err, msg) {
		return shared.Success, false
	}

	switch {
	case strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique"):
		return shared.DuplicateKeyError, true
	case strings.Contains(msg, "foreign key"):
		return shared.ForeignKeyError, true
	case strings.Contains(msg, "connect") || strings.Contains(msg, "connection"):
		return shared.DatabaseConnectionError, true
	default:
		return shared.DatabaseError, true
	}
}

// looksLikeStorageError gates message sniffing so unrelated errors fall
// through to the router's later branches instead of being mislabeled as
// database failures.
func looksLikeStorageError(err error, msg string) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	for _, marker := range []string{"sqlstate", "pgx", "postgres", "conn busy", "constraint"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
