package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Frame is a named, owned configuration for an interactive feed card.
type Frame struct {
	ID                string    `db:"id" json:"id"`
	Owner             string    `db:"owner" json:"owner"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	Template          string    `db:"template" json:"template"`
	Config            JSON      `db:"config" json:"config"`
	DraftConfig       JSON      `db:"draft_config" json:"draft_config"`
	Storage           JSON      `db:"storage" json:"storage"`
	LinkedPage        *string   `db:"linked_page" json:"linked_page,omitempty"`
	Webhooks          Webhooks  `db:"webhooks" json:"webhooks"`
	CurrentMonthCalls int       `db:"current_month_calls" json:"current_month_calls"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// JSON is an opaque JSON document stored in a text/jsonb column.
type JSON []byte

// EmptyObject is the storage value of a freshly created frame.
func EmptyObject() JSON {
	return JSON(`{}`)
}

// Clone returns a copy that shares no memory with j.
func (j JSON) Clone() JSON {
	if j == nil {
		return nil
	}
	return bytes.Clone(j)
}

// Valid reports whether j holds a syntactically valid JSON document.
func (j JSON) Valid() bool {
	return len(j) > 0 && json.Valid(j)
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = bytes.Clone(data)
	return nil
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner. SQLite hands back strings, Postgres bytes.
func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = bytes.Clone(v)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("models: cannot scan %T into JSON", src)
	}
	return nil
}

// Webhooks maps an event name to its callback URL. A missing key means no
// webhook is registered for that event.
type Webhooks map[string]string

// Clone returns a new map with the same entries; never nil.
func (w Webhooks) Clone() Webhooks {
	out := make(Webhooks, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer.
func (w Webhooks) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(w))
	if err != nil {
		return nil, fmt.Errorf("models: failed to encode webhooks: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (w *Webhooks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*w = Webhooks{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Webhooks", src)
	}

	m := Webhooks{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("models: failed to decode webhooks: %w", err)
		}
	}
	*w = m
	return nil
}

// Request types

type CreateFrameRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Template    string  `json:"template"`
}

type RenameFrameRequest struct {
	Name string `json:"name"`
}

// nil URL clears the linked page
type UpdateLinkedPageRequest struct {
	URL *string `json:"url,omitempty"`
}

// nil or empty URL removes the event
type UpdateWebhookRequest struct {
	Event string  `json:"event"`
	URL   *string `json:"url,omitempty"`
}

type UpdatePreviewRequest struct {
	Preview string `json:"preview"`
}

// ButtonIndex is 1-based, as delivered by the feed client.
type InteractRequest struct {
	ButtonIndex int    `json:"button_index"`
	FID         string `json:"fid"`
}

// Response types

type FrameListResponse struct {
	Frames []Frame `json:"frames"`
}

type TemplateInfo struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TemplateListResponse struct {
	Templates []TemplateInfo `json:"templates"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
