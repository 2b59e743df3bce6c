package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openTokens returns an in-memory database holding one live refresh token
// with id 1.
func openTokens(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE refresh_tokens (
			id INTEGER PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			is_revoked BOOLEAN NOT NULL DEFAULT FALSE
		);
		INSERT INTO refresh_tokens (id, token) VALUES (1, 'old');`)
	require.NoError(t, err)
	return db
}

// rotate revokes token 1 and inserts its replacement, then returns fail.
func rotate(fail error) func(ctx context.Context, tx DBTX) error {
	return func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE refresh_tokens SET is_revoked = TRUE WHERE id = 1`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO refresh_tokens (token) VALUES ('new')`); err != nil {
			return err
		}
		return fail
	}
}

func state(t *testing.T, db *sql.DB) (revoked bool, total int) {
	t.Helper()
	require.NoError(t, db.QueryRow(`SELECT is_revoked FROM refresh_tokens WHERE id = 1`).Scan(&revoked))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM refresh_tokens`).Scan(&total))
	return revoked, total
}

func TestWithTx_CommitKeepsBothWrites(t *testing.T) {
	db := openTokens(t)

	require.NoError(t, WithTx(context.Background(), db, nil, rotate(nil)))

	revoked, total := state(t, db)
	require.True(t, revoked)
	require.Equal(t, 2, total)
}

func TestWithTx_ErrorRollsBackBothWrites(t *testing.T) {
	db := openTokens(t)
	boom := errors.New("sign failed")

	err := WithTx(context.Background(), db, nil, rotate(boom))
	require.ErrorIs(t, err, boom)

	revoked, total := state(t, db)
	require.False(t, revoked, "revoke must not survive a failed unit")
	require.Equal(t, 1, total)
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openTokens(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			_ = rotate(nil)(ctx, tx)
			panic("kaput")
		})
	})

	revoked, total := state(t, db)
	require.False(t, revoked)
	require.Equal(t, 1, total)
}

func TestWithTx_BeginError(t *testing.T) {
	db := openTokens(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}

func TestWithTx_CommitErrorIsReturned(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error { return nil })
	require.EqualError(t, err, "commit failed")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique", fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"}), true},
		{"foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"plain error with code text", errors.New("23505"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
