// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"sort"

	"github.com/danielhkuo/quickly-frame/fonts"
)

var (
	ErrUnknownTemplate    = errors.New("unknown template")
	ErrUnknownFunction    = errors.New("unknown template function")
	ErrInvalidInteraction = errors.New("invalid interaction")
)

// AspectRatioWide is the landscape card ratio used by feed clients.
const AspectRatioWide = "1.91:1"

type Button struct {
	Label string `json:"label"`
}

// Render describes one screen of a frame.
type Render struct {
	Buttons      []Button      `json:"buttons"`
	AspectRatio  string        `json:"aspect_ratio"`
	Fonts        []fonts.Font  `json:"fonts"`
	Component    template.HTML `json:"component"`
	FunctionName string        `json:"function_name,omitempty"`
	PostURL      string        `json:"post_url,omitempty"`
}

// Interaction is a button press delivered by the feed client.
type Interaction struct {
	ButtonIndex int
	FID         string
}

// InitialFunc renders the first screen for a config and the frame's stored state.
type InitialFunc func(ctx context.Context, config, state json.RawMessage) (*Render, error)

// TransitionFunc handles an interaction and returns the next screen plus
// the state to store.
type TransitionFunc func(ctx context.Context, config, state json.RawMessage, in Interaction) (*Render, json.RawMessage, error)

type Template struct {
	Name          string
	Description   string
	InitialConfig json.RawMessage
	Initial       InitialFunc
	Functions     map[string]TransitionFunc
}

// Registry maps template tags to templates. It is filled once at startup
// and only read afterwards.
type Registry struct {
	templates map[string]Template
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]Template)}
}

func (r *Registry) Register(tag string, t Template) error {
	if tag == "" {
		return errors.New("templates: empty tag")
	}
	if _, exists := r.templates[tag]; exists {
		return fmt.Errorf("templates: %q already registered", tag)
	}
	if !json.Valid(t.InitialConfig) {
		return fmt.Errorf("templates: %q has an invalid initial config", tag)
	}
	if t.Initial == nil {
		return fmt.Errorf("templates: %q has no initial render", tag)
	}
	r.templates[tag] = t
	return nil
}

func (r *Registry) Lookup(tag string) (Template, bool) {
	t, ok := r.templates[tag]
	return t, ok
}

// InitialConfig returns a private copy of the template's initial config.
func (r *Registry) InitialConfig(tag string) (json.RawMessage, error) {
	t, ok := r.templates[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, tag)
	}
	return bytes.Clone(t.InitialConfig), nil
}

// Transition finds the named interaction handler of a template.
func (r *Registry) Transition(tag, function string) (TransitionFunc, error) {
	t, ok := r.templates[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, tag)
	}
	fn, ok := t.Functions[function]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownFunction, tag, function)
	}
	return fn, nil
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.templates))
	for tag := range r.templates {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// RenderHTML executes tmpl into an HTML fragment.
func RenderHTML(tmpl *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: failed to render %s: %w", tmpl.Name(), err)
	}
	return template.HTML(buf.String()), nil
}
