// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/models"
)

func openStore(t *testing.T) *db.FrameStore {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.CreateSchema(ctx, conn))
	// Second call must be a no-op.
	require.NoError(t, db.CreateSchema(ctx, conn))

	return db.NewFrameStore(conn)
}

func insertFrame(t *testing.T, store *db.FrameStore, id, owner string, at time.Time) *models.Frame {
	t.Helper()
	f, err := store.Insert(context.Background(), &models.Frame{
		ID:          id,
		Owner:       owner,
		Name:        "frame " + id,
		Template:    "poll",
		Config:      models.JSON(`{"options":[]}`),
		DraftConfig: models.JSON(`{"options":[]}`),
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	require.NoError(t, err)
	return f
}

func TestInsertReturnsStoredRow(t *testing.T) {
	store := openStore(t)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	desc := "a description"
	created, err := store.Insert(context.Background(), &models.Frame{
		ID:          "f1",
		Owner:       "alice",
		Name:        "First",
		Description: &desc,
		Template:    "poll",
		Config:      models.JSON(`{"a":1}`),
		DraftConfig: models.JSON(`{"a":1}`),
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	require.NoError(t, err)

	assert.Equal(t, "f1", created.ID)
	assert.Equal(t, "alice", created.Owner)
	require.NotNil(t, created.Description)
	assert.Equal(t, desc, *created.Description)
	assert.JSONEq(t, `{"a":1}`, string(created.Config))
	assert.JSONEq(t, `{"a":1}`, string(created.DraftConfig))
	assert.JSONEq(t, `{}`, string(created.Storage))
	assert.Empty(t, created.Webhooks)
	assert.NotNil(t, created.Webhooks)
	assert.Nil(t, created.LinkedPage)
	assert.Zero(t, created.CurrentMonthCalls)
	assert.True(t, created.UpdatedAt.Equal(at), "updated_at = %v", created.UpdatedAt)
}

func TestSelectFiltersAndOrders(t *testing.T) {
	store := openStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	insertFrame(t, store, "a1", "alice", base)
	insertFrame(t, store, "a2", "alice", base.Add(2*time.Minute))
	insertFrame(t, store, "a3", "alice", base.Add(time.Minute))
	insertFrame(t, store, "b1", "bob", base.Add(3*time.Minute))

	ctx := context.Background()

	all, err := store.Select(ctx, db.Filter{Owner: "alice"}, db.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recent, err := store.Select(ctx, db.Filter{Owner: "alice"}, db.Query{NewestFirst: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "a2", recent[0].ID)
	assert.Equal(t, "a3", recent[1].ID)

	none, err := store.Select(ctx, db.Filter{Owner: "carol"}, db.Query{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetRequiresAllPredicates(t *testing.T) {
	store := openStore(t)
	insertFrame(t, store, "a1", "alice", time.Now().UTC())
	ctx := context.Background()

	f, err := store.Get(ctx, db.Filter{ID: "a1", Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "a1", f.ID)

	_, err = store.Get(ctx, db.Filter{ID: "a1", Owner: "bob"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.Get(ctx, db.Filter{})
	assert.ErrorIs(t, err, db.ErrEmptyFilter)
}

func TestUpdateSetsOnlyGivenColumns(t *testing.T) {
	store := openStore(t)
	insertFrame(t, store, "a1", "alice", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	name := "renamed"
	page := "https://example.com"
	calls := 7
	later := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	n, err := store.Update(ctx, db.Filter{ID: "a1", Owner: "alice"}, db.FrameUpdate{
		Name:              &name,
		DraftConfig:       models.JSON(`{"draft":true}`),
		LinkedPage:        &page,
		Webhooks:          models.Webhooks{"cast": "https://hook"},
		CurrentMonthCalls: &calls,
		UpdatedAt:         later,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	f, err := store.Get(ctx, db.Filter{ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", f.Name)
	assert.JSONEq(t, `{"draft":true}`, string(f.DraftConfig))
	assert.JSONEq(t, `{"options":[]}`, string(f.Config))
	require.NotNil(t, f.LinkedPage)
	assert.Equal(t, page, *f.LinkedPage)
	assert.Equal(t, models.Webhooks{"cast": "https://hook"}, f.Webhooks)
	assert.Equal(t, 7, f.CurrentMonthCalls)
	assert.True(t, f.UpdatedAt.Equal(later))

	_, err = store.Update(ctx, db.Filter{ID: "a1"}, db.FrameUpdate{ClearLinkedPage: true})
	require.NoError(t, err)
	f, err = store.Get(ctx, db.Filter{ID: "a1"})
	require.NoError(t, err)
	assert.Nil(t, f.LinkedPage)
}

func TestAddCallsIncrementsWithoutTouchingUpdatedAt(t *testing.T) {
	store := openStore(t)
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	insertFrame(t, store, "a1", "alice", at)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		n, err := store.Update(ctx, db.Filter{ID: "a1"}, db.FrameUpdate{AddCalls: 2, KeepUpdatedAt: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	}

	f, err := store.Get(ctx, db.Filter{ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, 6, f.CurrentMonthCalls)
	assert.True(t, f.UpdatedAt.Equal(at), "updated_at = %v", f.UpdatedAt)

	_, err = store.Update(ctx, db.Filter{ID: "a1"}, db.FrameUpdate{KeepUpdatedAt: true})
	assert.ErrorIs(t, err, db.ErrEmptyUpdate)
}

func TestUpdateAndDeleteRespectOwner(t *testing.T) {
	store := openStore(t)
	insertFrame(t, store, "a1", "alice", time.Now().UTC())
	ctx := context.Background()

	name := "hijacked"
	n, err := store.Update(ctx, db.Filter{ID: "a1", Owner: "bob"}, db.FrameUpdate{Name: &name})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Delete(ctx, db.Filter{ID: "a1", Owner: "bob"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Delete(ctx, db.Filter{ID: "a1", Owner: "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.Get(ctx, db.Filter{ID: "a1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUnfilteredWritesAreRefused(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Update(ctx, db.Filter{}, db.FrameUpdate{})
	assert.ErrorIs(t, err, db.ErrEmptyFilter)

	_, err = store.Delete(ctx, db.Filter{})
	assert.ErrorIs(t, err, db.ErrEmptyFilter)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := db.Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}
