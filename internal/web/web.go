package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"blackqueen/internal/game"
	"blackqueen/internal/protocol"
	"blackqueen/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

// SetupForm is the state of the player entry form.
type SetupForm struct {
	PlayerCount int
	Names       []string // One per seat, len == PlayerCount
}

// RoundForm is the state of the round entry form.
type RoundForm struct {
	Decks     shared.DeckCount
	Bids      shared.BidRange
	Bid       int
	Bidder    string
	Teammates map[string]bool
	Won       bool
}

// Page is everything the session template renders.
type Page struct {
	Code    string
	Warning string // Validation failure to re-prompt on
	Notice  string // Confirmation of the last action
	State   protocol.StatePayload
	Setup   SetupForm
	Round   RoundForm
}

// InProgress reports whether the round form should be shown.
func (p Page) InProgress() bool {
	return p.State.Phase == game.InProgress
}

// Renderer executes the embedded templates.
type Renderer struct {
	index   *template.Template
	session *template.Template
}

var funcs = template.FuncMap{
	"delta": func(deltas map[string]int, name string) int {
		return deltas[name]
	},
	"seq": func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	},
	"add": func(a, b int) int { return a + b },
	"deckCounts": shared.DeckCounts,
	"minPlayers": func() int { return shared.MinPlayers },
	"maxPlayers": func() int { return shared.MaxPlayers },
}

// NewRenderer parses the templates.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	index, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	session, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/session.html")
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &Renderer{index: index, session: session}, nil
}

// Index renders the landing page.
func (r *Renderer) Index(w io.Writer) error {
	return execute(w, r.index, nil)
}

// Session renders a game page.
func (r *Renderer) Session(w io.Writer, p Page) error {
	return execute(w, r.session, p)
}

// execute renders into a buffer first so a template error never leaves a half-written page.
func execute(w io.Writer, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
