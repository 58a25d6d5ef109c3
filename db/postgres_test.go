// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-frame/models"
)

func newPostgresMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, DriverPostgres), mock
}

func TestCreateSchemaUsesPostgresDialect(t *testing.T) {
	conn, mock := newPostgresMock(t)

	mock.ExpectExec(regexp.QuoteMeta("config JSONB NOT NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, CreateSchema(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRebindsPlaceholdersForPostgres(t *testing.T) {
	conn, mock := newPostgresMock(t)
	store := NewFrameStore(conn)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE frame SET webhooks = $1, updated_at = $2 WHERE id = $3 AND owner = $4",
	)).
		WithArgs(`{"cast":"https://a"}`, at, "f1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.Update(context.Background(), Filter{ID: "f1", Owner: "alice"}, FrameUpdate{
		Webhooks:  models.Webhooks{"cast": "https://a"},
		UpdatedAt: at,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCallsForPostgres(t *testing.T) {
	conn, mock := newPostgresMock(t)
	store := NewFrameStore(conn)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE frame SET current_month_calls = current_month_calls + $1 WHERE id = $2",
	)).
		WithArgs(1, "f1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.Update(context.Background(), Filter{ID: "f1"}, FrameUpdate{AddCalls: 1, KeepUpdatedAt: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRecentForPostgres(t *testing.T) {
	conn, mock := newPostgresMock(t)
	store := NewFrameStore(conn)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "owner", "name", "description", "template", "config", "draft_config",
		"storage", "linked_page", "webhooks", "current_month_calls", "created_at", "updated_at",
	}).AddRow("f1", "alice", "First", nil, "poll", []byte(`{"a":1}`), []byte(`{"a":2}`),
		[]byte(`{}`), nil, []byte(`{"cast":"https://a"}`), 3, at, at)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner = $1 ORDER BY updated_at DESC LIMIT $2")).
		WithArgs("alice", 10).
		WillReturnRows(rows)

	frames, err := store.Select(context.Background(), Filter{Owner: "alice"}, Query{NewestFirst: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, frames, 1)

	f := frames[0]
	assert.JSONEq(t, `{"a":1}`, string(f.Config))
	assert.JSONEq(t, `{"a":2}`, string(f.DraftConfig))
	assert.Equal(t, models.Webhooks{"cast": "https://a"}, f.Webhooks)
	assert.Equal(t, 3, f.CurrentMonthCalls)
	assert.Nil(t, f.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForPostgres(t *testing.T) {
	conn, mock := newPostgresMock(t)
	store := NewFrameStore(conn)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM frame WHERE id = $1 AND owner = $2")).
		WithArgs("f1", "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.Delete(context.Background(), Filter{ID: "f1", Owner: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
