// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/quickly-frame/models"
)

var (
	// ErrEmptyFilter guards against writes that would hit every row.
	ErrEmptyFilter = errors.New("db: refusing unfiltered frame write")
	ErrEmptyUpdate = errors.New("db: frame update sets no columns")
)

const frameColumns = `id, owner, name, description, template, config, draft_config,
	storage, linked_page, webhooks, current_month_calls, created_at, updated_at`

// Filter is a conjunction of equality predicates; empty fields are ignored.
type Filter struct {
	ID    string
	Owner string
}

func (f Filter) empty() bool {
	return f.ID == "" && f.Owner == ""
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.ID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, f.ID)
	}
	if f.Owner != "" {
		clauses = append(clauses, "owner = ?")
		args = append(args, f.Owner)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query shapes a Select. The zero value means unordered and unlimited.
type Query struct {
	NewestFirst bool
	Limit       int
}

// FrameUpdate lists the columns to set. Nil fields are left untouched.
// AddCalls increments current_month_calls in SQL and is ignored when
// CurrentMonthCalls is set. updated_at is stamped unless KeepUpdatedAt.
type FrameUpdate struct {
	Name              *string
	Config            models.JSON
	DraftConfig       models.JSON
	Storage           models.JSON
	LinkedPage        *string
	ClearLinkedPage   bool
	Webhooks          models.Webhooks
	CurrentMonthCalls *int
	AddCalls          int
	UpdatedAt         time.Time
	KeepUpdatedAt     bool
}

func (u FrameUpdate) set() (string, []any) {
	var cols []string
	var args []any
	add := func(col string, v any) {
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Config != nil {
		add("config", u.Config)
	}
	if u.DraftConfig != nil {
		add("draft_config", u.DraftConfig)
	}
	if u.Storage != nil {
		add("storage", u.Storage)
	}
	if u.ClearLinkedPage {
		add("linked_page", nil)
	} else if u.LinkedPage != nil {
		add("linked_page", *u.LinkedPage)
	}
	if u.Webhooks != nil {
		add("webhooks", u.Webhooks)
	}
	if u.CurrentMonthCalls != nil {
		add("current_month_calls", *u.CurrentMonthCalls)
	} else if u.AddCalls != 0 {
		cols = append(cols, "current_month_calls = current_month_calls + ?")
		args = append(args, u.AddCalls)
	}

	if u.KeepUpdatedAt {
		return strings.Join(cols, ", "), args
	}
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	add("updated_at", updatedAt)

	return strings.Join(cols, ", "), args
}

// FrameStore is the persistence client for the frame table.
type FrameStore struct {
	db *sqlx.DB
}

func NewFrameStore(db *sqlx.DB) *FrameStore {
	return &FrameStore{db: db}
}

// Select returns every frame matching filter.
func (s *FrameStore) Select(ctx context.Context, filter Filter, q Query) ([]models.Frame, error) {
	where, args := filter.where()
	query := "SELECT " + frameColumns + " FROM frame" + where
	if q.NewestFirst {
		query += " ORDER BY updated_at DESC"
	}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	frames := []models.Frame{}
	if err := s.db.SelectContext(ctx, &frames, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to select frames: %w", err)
	}
	return frames, nil
}

// Get returns the single frame matching filter, or sql.ErrNoRows.
func (s *FrameStore) Get(ctx context.Context, filter Filter) (*models.Frame, error) {
	if filter.empty() {
		return nil, ErrEmptyFilter
	}

	where, args := filter.where()
	query := "SELECT " + frameColumns + " FROM frame" + where + " LIMIT 1"

	var frame models.Frame
	if err := s.db.GetContext(ctx, &frame, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return &frame, nil
}

// Insert stores frame and returns the row as written.
func (s *FrameStore) Insert(ctx context.Context, frame *models.Frame) (*models.Frame, error) {
	query := s.db.Rebind(`
		INSERT INTO frame (id, owner, name, description, template, config, draft_config,
			storage, linked_page, webhooks, current_month_calls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + frameColumns)

	webhooks := frame.Webhooks
	if webhooks == nil {
		webhooks = models.Webhooks{}
	}
	storage := frame.Storage
	if storage == nil {
		storage = models.EmptyObject()
	}

	var created models.Frame
	err := s.db.QueryRowxContext(ctx, query,
		frame.ID, frame.Owner, frame.Name, frame.Description, frame.Template,
		frame.Config, frame.DraftConfig, storage, frame.LinkedPage, webhooks,
		frame.CurrentMonthCalls, frame.CreatedAt, frame.UpdatedAt,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to insert frame: %w", err)
	}
	return &created, nil
}

// Update applies u to the frames matching filter and reports how many rows changed.
func (s *FrameStore) Update(ctx context.Context, filter Filter, u FrameUpdate) (int64, error) {
	if filter.empty() {
		return 0, ErrEmptyFilter
	}

	set, args := u.set()
	if set == "" {
		return 0, ErrEmptyUpdate
	}
	where, whereArgs := filter.where()
	args = append(args, whereArgs...)

	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE frame SET "+set+where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update frame: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the frames matching filter and reports how many were removed.
func (s *FrameStore) Delete(ctx context.Context, filter Filter) (int64, error) {
	if filter.empty() {
		return 0, ErrEmptyFilter
	}

	where, args := filter.where()
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM frame"+where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete frame: %w", err)
	}
	return res.RowsAffected()
}
