// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package frame

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-frame/auth"
	"github.com/danielhkuo/quickly-frame/cache"
	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/models"
	"github.com/danielhkuo/quickly-frame/preview"
	"github.com/danielhkuo/quickly-frame/session"
	"github.com/danielhkuo/quickly-frame/templates"
)

// RecentLimit is how many frames ListRecent returns.
const RecentLimit = 10

var (
	// ErrNotFound covers a missing session, a missing frame and a frame
	// owned by someone else alike.
	ErrNotFound        = errors.New("frame not found")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNameRequired    = errors.New("frame name is required")
	ErrInvalidJSON     = errors.New("value is not valid JSON")
	ErrEventRequired   = errors.New("webhook event is required")
)

// Store is the persistence client. db.FrameStore implements it.
type Store interface {
	Select(ctx context.Context, filter db.Filter, q db.Query) ([]models.Frame, error)
	Get(ctx context.Context, filter db.Filter) (*models.Frame, error)
	Insert(ctx context.Context, frame *models.Frame) (*models.Frame, error)
	Update(ctx context.Context, filter db.Filter, u db.FrameUpdate) (int64, error)
	Delete(ctx context.Context, filter db.Filter) (int64, error)
}

// TemplateSource provides the initial config of a template tag.
type TemplateSource interface {
	InitialConfig(tag string) (json.RawMessage, error)
}

// Revalidator is told which rendered paths went stale.
type Revalidator interface {
	Revalidate(path string)
}

// Service mediates every read and write of frames. Owner-scoped operations
// take the caller from the session in ctx.
//
// Publish, Revert and UpdateWebhook read the frame and then write it back
// as two separate statements. A concurrent write between the two is lost.
type Service struct {
	store     Store
	templates TemplateSource
	views     Revalidator
	uploader  preview.Uploader
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithClock replaces the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the frame ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, tmpl TemplateSource, views Revalidator, uploader preview.Uploader, opts ...Option) *Service {
	s := &Service{
		store:     store,
		templates: tmpl,
		views:     views,
		uploader:  uploader,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     auth.NewFrameID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// owned builds the filter for a frame the caller owns.
func owned(ctx context.Context, id string) (db.Filter, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || id == "" {
		return db.Filter{}, ErrNotFound
	}
	return db.Filter{ID: id, Owner: sess.UserID}, nil
}

// ownedFrame loads a frame the caller owns. Input validation runs after it
// so a foreign or missing frame always reads as ErrNotFound.
func (s *Service) ownedFrame(ctx context.Context, id string) (db.Filter, *models.Frame, error) {
	filter, err := owned(ctx, id)
	if err != nil {
		return db.Filter{}, nil, err
	}
	f, err := s.store.Get(ctx, filter)
	if err != nil {
		return db.Filter{}, nil, notFound(err)
	}
	return filter, f, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// List returns every frame the caller owns, in no particular order.
func (s *Service) List(ctx context.Context) ([]models.Frame, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.Select(ctx, db.Filter{Owner: sess.UserID}, db.Query{})
}

// ListRecent returns the caller's most recently updated frames.
func (s *Service) ListRecent(ctx context.Context) ([]models.Frame, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrNotFound
	}
	return s.store.Select(ctx, db.Filter{Owner: sess.UserID}, db.Query{NewestFirst: true, Limit: RecentLimit})
}

func (s *Service) Get(ctx context.Context, id string) (*models.Frame, error) {
	_, f, err := s.ownedFrame(ctx, id)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type CreateParams struct {
	Name        string
	Description *string
	Template    string
}

// Create stores a new frame whose published and draft configs are both the
// template's initial config, with empty storage.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Frame, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	initial, err := s.templates.InitialConfig(p.Template)
	if err != nil {
		if errors.Is(err, templates.ErrUnknownTemplate) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, p.Template)
		}
		return nil, err
	}

	now := s.now()
	return s.store.Insert(ctx, &models.Frame{
		ID:          s.newID(),
		Owner:       sess.UserID,
		Name:        name,
		Description: p.Description,
		Template:    p.Template,
		Config:      models.JSON(initial).Clone(),
		DraftConfig: models.JSON(initial).Clone(),
		Storage:     models.EmptyObject(),
		Webhooks:    models.Webhooks{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// update writes u to a frame the caller owns and revalidates its view.
func (s *Service) update(ctx context.Context, id string, u db.FrameUpdate) error {
	filter, err := owned(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, filter, u)
}

func (s *Service) write(ctx context.Context, filter db.Filter, u db.FrameUpdate) error {
	u.UpdatedAt = s.now()
	n, err := s.store.Update(ctx, filter, u)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.views.Revalidate(cache.FramePath(filter.ID))
	return nil
}

func (s *Service) Rename(ctx context.Context, id, name string) error {
	filter, _, err := s.ownedFrame(ctx, id)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	return s.write(ctx, filter, db.FrameUpdate{Name: &name})
}

// UpdateDraftConfig replaces the draft config wholesale. Only JSON syntax
// is checked; what the template makes of it is not.
func (s *Service) UpdateDraftConfig(ctx context.Context, id string, config json.RawMessage) error {
	filter, _, err := s.ownedFrame(ctx, id)
	if err != nil {
		return err
	}
	if !json.Valid(config) {
		return ErrInvalidJSON
	}
	return s.write(ctx, filter, db.FrameUpdate{DraftConfig: models.JSON(config).Clone()})
}

// Publish copies the draft config into the published config.
func (s *Service) Publish(ctx context.Context, id string) error {
	filter, f, err := s.ownedFrame(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, filter, db.FrameUpdate{Config: f.DraftConfig.Clone()})
}

// Revert copies the published config back over the draft.
func (s *Service) Revert(ctx context.Context, id string) error {
	filter, f, err := s.ownedFrame(ctx, id)
	if err != nil {
		return err
	}
	return s.write(ctx, filter, db.FrameUpdate{DraftConfig: f.Config.Clone()})
}

// UpdateLinkedPage sets the linked page, or clears it when url is nil or empty.
func (s *Service) UpdateLinkedPage(ctx context.Context, id string, url *string) error {
	if url == nil || *url == "" {
		return s.update(ctx, id, db.FrameUpdate{ClearLinkedPage: true})
	}
	return s.update(ctx, id, db.FrameUpdate{LinkedPage: url})
}

// UpdateWebhook registers url for event, or removes the event when url is
// nil or empty. The stored map is copied, never modified in place.
func (s *Service) UpdateWebhook(ctx context.Context, id, event string, url *string) error {
	filter, f, err := s.ownedFrame(ctx, id)
	if err != nil {
		return err
	}
	if event == "" {
		return ErrEventRequired
	}

	webhooks := f.Webhooks.Clone()
	if url != nil && *url != "" {
		webhooks[event] = *url
	} else {
		delete(webhooks, event)
	}

	return s.write(ctx, filter, db.FrameUpdate{Webhooks: webhooks})
}

// UpdateStorage overwrites a frame's storage without checking ownership.
// Only call it with an id the server already trusts.
func (s *Service) UpdateStorage(ctx context.Context, id string, storage json.RawMessage) error {
	if id == "" {
		return ErrNotFound
	}
	if !json.Valid(storage) {
		return ErrInvalidJSON
	}
	return s.overwrite(ctx, id, db.FrameUpdate{Storage: models.JSON(storage).Clone()})
}

// UpdateCalls overwrites the current month's call count without checking
// ownership.
func (s *Service) UpdateCalls(ctx context.Context, id string, calls int) error {
	if id == "" {
		return ErrNotFound
	}
	return s.overwrite(ctx, id, db.FrameUpdate{CurrentMonthCalls: &calls})
}

// IncrementCalls adds delta to the current month's call count in one
// statement without checking ownership.
func (s *Service) IncrementCalls(ctx context.Context, id string, delta int) error {
	if id == "" {
		return ErrNotFound
	}
	return s.overwrite(ctx, id, db.FrameUpdate{AddCalls: delta})
}

// overwrite is for writes driven by public traffic: they leave updated_at
// alone so they do not reorder the owner's recent list.
func (s *Service) overwrite(ctx context.Context, id string, u db.FrameUpdate) error {
	u.KeepUpdatedAt = true
	n, err := s.store.Update(ctx, db.Filter{ID: id}, u)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePreview extracts the PNG data URL payload from markup and uploads
// it as the preview of a frame the caller owns.
func (s *Service) UpdatePreview(ctx context.Context, id, markup string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	image, err := preview.Extract(markup)
	if err != nil {
		return err
	}
	if err := s.uploader.Upload(ctx, id, image); err != nil {
		return fmt.Errorf("failed to upload preview: %w", err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	filter, err := owned(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.store.Delete(ctx, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.views.Revalidate(cache.ListPath)
	return nil
}

// Lookup reads a frame by id alone. It backs the public frame endpoints and
// must not be used to answer owner requests.
func (s *Service) Lookup(ctx context.Context, id string) (*models.Frame, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	f, err := s.store.Get(ctx, db.Filter{ID: id})
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}
