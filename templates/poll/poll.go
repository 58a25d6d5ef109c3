// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package poll is the vote template: one button per option, one vote per
// voter, results shown after voting.
package poll

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/danielhkuo/quickly-frame/fonts"
	"github.com/danielhkuo/quickly-frame/templates"
)

const (
	Tag = "poll"

	FunctionVote = "vote"
	FontFamily   = "Roboto"
)

type Option struct {
	DisplayLabel string `json:"displayLabel"`
	ButtonLabel  string `json:"buttonLabel"`
}

type Config struct {
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

// State is what the poll keeps in the frame's storage.
// VotesForID is keyed by the 1-based option index.
type State struct {
	VotesForID map[string]int  `json:"votesForId"`
	Voters     map[string]bool `json:"voters"`
	TotalVotes int             `json:"totalVotes"`
}

var initialConfig = Config{
	Question: "Which one do you prefer?",
	Options: []Option{
		{DisplayLabel: "Option A", ButtonLabel: "A"},
		{DisplayLabel: "Option B", ButtonLabel: "B"},
	},
}

type poll struct {
	fonts fonts.Loader
}

// New builds the poll template. Fonts come from loader on every render.
func New(loader fonts.Loader) templates.Template {
	p := &poll{fonts: loader}

	initial, err := json.Marshal(initialConfig)
	if err != nil {
		panic(fmt.Sprintf("poll: cannot encode initial config: %v", err))
	}

	return templates.Template{
		Name:          "Poll",
		Description:   "Ask a question and let people vote with buttons.",
		InitialConfig: initial,
		Initial:       p.initial,
		Functions: map[string]templates.TransitionFunc{
			FunctionVote: p.vote,
		},
	}
}

func decodeConfig(raw json.RawMessage) (Config, error) {
	var cfg Config
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("poll: invalid config: %w", err)
	}
	return cfg, nil
}

func decodeState(raw json.RawMessage) (State, error) {
	var st State
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &st); err != nil {
			return State{}, fmt.Errorf("poll: invalid state: %w", err)
		}
	}
	if st.VotesForID == nil {
		st.VotesForID = make(map[string]int)
	}
	if st.Voters == nil {
		st.Voters = make(map[string]bool)
	}
	return st, nil
}

func (p *poll) initial(ctx context.Context, config, _ json.RawMessage) (*templates.Render, error) {
	cfg, err := decodeConfig(config)
	if err != nil {
		return nil, err
	}

	roboto, err := p.fonts.LoadFamily(ctx, FontFamily)
	if err != nil {
		return nil, fmt.Errorf("poll: failed to load fonts: %w", err)
	}

	view, err := VoteView(cfg)
	if err != nil {
		return nil, err
	}

	buttons := make([]templates.Button, 0, len(cfg.Options))
	for _, option := range cfg.Options {
		buttons = append(buttons, templates.Button{Label: option.ButtonLabel})
	}

	return &templates.Render{
		Buttons:      buttons,
		AspectRatio:  templates.AspectRatioWide,
		Fonts:        roboto,
		Component:    view,
		FunctionName: FunctionVote,
	}, nil
}

// vote counts one vote per voter. Voters who already voted just see the
// results again.
func (p *poll) vote(ctx context.Context, config, state json.RawMessage, in templates.Interaction) (*templates.Render, json.RawMessage, error) {
	cfg, err := decodeConfig(config)
	if err != nil {
		return nil, nil, err
	}
	st, err := decodeState(state)
	if err != nil {
		return nil, nil, err
	}

	if in.ButtonIndex < 1 || in.ButtonIndex > len(cfg.Options) {
		return nil, nil, fmt.Errorf("%w: button %d of %d", templates.ErrInvalidInteraction, in.ButtonIndex, len(cfg.Options))
	}
	if in.FID == "" {
		return nil, nil, fmt.Errorf("%w: missing voter", templates.ErrInvalidInteraction)
	}

	if !st.Voters[in.FID] {
		st.Voters[in.FID] = true
		st.VotesForID[strconv.Itoa(in.ButtonIndex)]++
		st.TotalVotes++
	}

	roboto, err := p.fonts.LoadFamily(ctx, FontFamily)
	if err != nil {
		return nil, nil, fmt.Errorf("poll: failed to load fonts: %w", err)
	}

	view, err := ResultsView(cfg, st)
	if err != nil {
		return nil, nil, err
	}

	next, err := json.Marshal(st)
	if err != nil {
		return nil, nil, fmt.Errorf("poll: failed to encode state: %w", err)
	}

	return &templates.Render{
		Buttons:     []templates.Button{},
		AspectRatio: templates.AspectRatioWide,
		Fonts:       roboto,
		Component:   view,
	}, next, nil
}
