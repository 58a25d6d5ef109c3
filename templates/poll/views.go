// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"html/template"
	"strconv"

	"github.com/danielhkuo/quickly-frame/templates"
)

var voteTmpl = template.Must(template.New("vote").Parse(
	`<div style="display:flex;flex-direction:column;width:100%;height:100%;padding:48px;font-family:Roboto;background:#fff">` +
		`<h1 style="font-size:56px;font-weight:700">{{.Question}}</h1>` +
		`<ol style="font-size:36px">{{range .Options}}<li>{{.DisplayLabel}}</li>{{end}}</ol>` +
		`</div>`))

var resultsTmpl = template.Must(template.New("results").Parse(
	`<div style="display:flex;flex-direction:column;width:100%;height:100%;padding:48px;font-family:Roboto;background:#fff">` +
		`<h1 style="font-size:56px;font-weight:700">{{.Question}}</h1>` +
		`{{range .Rows}}<div style="display:flex;justify-content:space-between;font-size:36px">` +
		`<span>{{.Label}}</span><span>{{.Percent}}% ({{.Votes}})</span></div>{{end}}` +
		`<p style="font-size:28px">{{.Total}} votes</p>` +
		`</div>`))

// VoteView renders the question and its options.
func VoteView(cfg Config) (template.HTML, error) {
	return templates.RenderHTML(voteTmpl, cfg)
}

type resultRow struct {
	Label   string
	Votes   int
	Percent int
}

// ResultsView renders vote counts per option.
func ResultsView(cfg Config, st State) (template.HTML, error) {
	rows := make([]resultRow, 0, len(cfg.Options))
	for i, option := range cfg.Options {
		votes := st.VotesForID[strconv.Itoa(i+1)]
		percent := 0
		if st.TotalVotes > 0 {
			percent = votes * 100 / st.TotalVotes
		}
		rows = append(rows, resultRow{Label: option.DisplayLabel, Votes: votes, Percent: percent})
	}

	return templates.RenderHTML(resultsTmpl, struct {
		Question string
		Rows     []resultRow
		Total    int
	}{cfg.Question, rows, st.TotalVotes})
}
