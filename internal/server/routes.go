package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blackqueen/internal/chart"
	"blackqueen/internal/export"
	"blackqueen/internal/game"
	"blackqueen/internal/metrics"
	"blackqueen/internal/protocol"
	"blackqueen/internal/scoresheet"
	"blackqueen/internal/shared"
	"blackqueen/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultPlayerCount = 4

// Server wires the hub to HTTP.
type Server struct {
	hub     *Hub
	pages   *web.Renderer
	charts  chart.Renderer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer creates the HTTP front end of hub.
func NewServer(hub *Hub, pages *web.Renderer, charts chart.Renderer, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{hub: hub, pages: pages, charts: charts, metrics: m, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/sessions", s.handleCreate)
	r.Route("/s/{code}", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Post("/start", s.handleStartForm)
		r.Post("/rounds", s.handleRoundForm)
		r.Post("/reset", s.handleResetForm)
		r.Get("/charts/{chart}.{format}", s.handleChart)
		r.Get("/export.xlsx", s.handleExport)
		r.Get("/sheet.yaml", s.handleSheet)
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.apiCreate)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", s.apiState)
			r.Delete("/", s.apiDelete)
			r.Get("/summary", s.apiSummary)
			r.Post("/start", s.apiStart)
			r.Post("/rounds", s.apiSubmitRound)
			r.Post("/reset", s.apiReset)
		})
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(s.hub, w, r)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// --- HTML pages ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.Index(w); err != nil {
		s.serverError(w, "render index", err)
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	code, err := s.hub.Create(r.Context())
	if err != nil {
		s.serverError(w, "create session", err)
		return
	}
	http.Redirect(w, r, "/s/"+code, http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	state, err := s.hub.State(r.Context(), code)
	if err != nil {
		s.pageError(w, err)
		return
	}

	q := r.URL.Query()
	page := web.Page{
		Code:  state.SessionCode,
		State: state,
		Setup: setupForm(atoiDefault(q.Get("players"), defaultPlayerCount), nil),
		Round: roundForm(state, q.Get("decks"), q.Get("bid"), "", nil, true),
	}
	if q.Has("started") && state.Phase == game.InProgress {
		page.Notice = "✅ Game Started!"
	}
	if n := atoiDefault(q.Get("submitted"), 0); n > 0 && n <= len(state.Rounds) {
		row := state.Rounds[n-1]
		page.Notice = fmt.Sprintf("✅ Round %d submitted! (%s %s the bid)", row.Round, row.Bidder, row.Result)
	}
	s.renderSession(w, http.StatusOK, page)
}

func (s *Server) handleStartForm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	names := r.PostForm["name"]

	if _, err := s.hub.StartGame(r.Context(), code, names); err != nil {
		if !game.IsValidation(err) {
			s.pageError(w, err)
			return
		}
		state, stateErr := s.hub.State(r.Context(), code)
		if stateErr != nil {
			s.pageError(w, stateErr)
			return
		}
		s.renderSession(w, http.StatusUnprocessableEntity, web.Page{
			Code:    state.SessionCode,
			Warning: warningFor(err),
			State:   state,
			Setup:   setupForm(atoiDefault(r.PostForm.Get("players"), len(names)), names),
			Round:   roundForm(state, "", "", "", nil, true),
		})
		return
	}
	http.Redirect(w, r, "/s/"+url.PathEscape(code)+"?started=1", http.StatusSeeOther)
}

func (s *Server) handleRoundForm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := r.PostForm
	won := form.Get("result") != string(shared.Lost)

	rec, err := s.submitForm(r, code, form)
	if err != nil {
		if !isUserError(err) {
			s.pageError(w, err)
			return
		}
		state, stateErr := s.hub.State(r.Context(), code)
		if stateErr != nil {
			s.pageError(w, stateErr)
			return
		}
		s.renderSession(w, http.StatusUnprocessableEntity, web.Page{
			Code:    state.SessionCode,
			Warning: warningFor(err),
			State:   state,
			Setup:   setupForm(defaultPlayerCount, nil),
			Round:   roundForm(state, form.Get("decks"), form.Get("bid"), form.Get("bidder"), form["teammate"], won),
		})
		return
	}

	q := url.Values{}
	q.Set("decks", strconv.Itoa(int(rec.DeckCount)))
	q.Set("bid", strconv.Itoa(rec.Bid))
	q.Set("submitted", strconv.Itoa(rec.Round))
	http.Redirect(w, r, "/s/"+url.PathEscape(code)+"?"+q.Encode(), http.StatusSeeOther)
}

func (s *Server) submitForm(r *http.Request, code string, form url.Values) (shared.RoundRecord, error) {
	outcome := shared.Outcome(form.Get("result"))
	if !outcome.Valid() {
		return shared.RoundRecord{}, protocol.ErrInvalidResult
	}
	decks, err := strconv.Atoi(form.Get("decks"))
	if err != nil {
		return shared.RoundRecord{}, fmt.Errorf("%w: %q", game.ErrInvalidDeckCount, form.Get("decks"))
	}
	bid, err := strconv.Atoi(form.Get("bid"))
	if err != nil {
		return shared.RoundRecord{}, fmt.Errorf("%w: %q is not a whole number", game.ErrBidOutOfRange, form.Get("bid"))
	}
	return s.hub.SubmitRound(r.Context(), code, game.Submission{
		Bidder:    form.Get("bidder"),
		Teammates: form["teammate"],
		DeckCount: shared.DeckCount(decks),
		Bid:       bid,
		Won:       outcome == shared.Won,
	})
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := s.hub.Reset(r.Context(), code); err != nil {
		s.pageError(w, err)
		return
	}
	http.Redirect(w, r, "/s/"+url.PathEscape(code), http.StatusSeeOther)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := chart.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	snap, err := s.hub.Snapshot(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.pageError(w, err)
		return
	}

	var buf bytes.Buffer
	switch chi.URLParam(r, "chart") {
	case "totals":
		err = s.charts.Totals(&buf, snap.Summary().Standings, format)
	case "history":
		err = s.charts.History(&buf, snap.Histories(), format)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, "render chart", err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	snap, err := s.hub.Snapshot(r.Context(), code)
	if err != nil {
		s.pageError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap); err != nil {
		s.serverError(w, "export xlsx", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="black-queen-%s.xlsx"`, url.PathEscape(code)))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	snap, err := s.hub.Snapshot(r.Context(), code)
	if err != nil {
		s.pageError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := scoresheet.FromSession(snap).Write(&buf); err != nil {
		s.serverError(w, "export score sheet", err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="black-queen-%s.yaml"`, url.PathEscape(code)))
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderSession(w http.ResponseWriter, status int, page web.Page) {
	var buf bytes.Buffer
	if err := s.pages.Session(&buf, page); err != nil {
		s.serverError(w, "render session", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) pageError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		http.Error(w, "Game not found. It may have expired; start a new one from the home page.", http.StatusNotFound)
		return
	}
	s.serverError(w, "handle request", err)
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("Request failed", "op", op, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// --- JSON API ---

func (s *Server) apiCreate(w http.ResponseWriter, r *http.Request) {
	code, err := s.hub.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_code": code})
}

func (s *Server) apiState(w http.ResponseWriter, r *http.Request) {
	state, err := s.hub.State(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) apiSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := s.hub.Snapshot(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Summary())
}

func (s *Server) apiDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiStart(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var payload protocol.StartGamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Message: fmt.Sprintf("failed to decode request body: %v", err)})
		return
	}
	if _, err := s.hub.StartGame(r.Context(), code, payload.Names); err != nil {
		s.writeError(w, err)
		return
	}
	s.apiState(w, r)
}

func (s *Server) apiSubmitRound(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var payload protocol.SubmitRoundPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Message: fmt.Sprintf("failed to decode request body: %v", err)})
		return
	}
	sub, err := payload.Submission()
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.hub.SubmitRound(r.Context(), code, sub)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, protocol.NewRoundRow(rec))
}

func (s *Server) apiReset(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Reset(r.Context(), chi.URLParam(r, "code")); err != nil {
		s.writeError(w, err)
		return
	}
	s.apiState(w, r)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case isUserError(err):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Error("API request failed", "error", err)
	}
	writeJSON(w, status, protocol.NewError(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// --- form helpers ---

func setupForm(count int, names []string) web.SetupForm {
	count = min(max(count, shared.MinPlayers), shared.MaxPlayers)
	form := web.SetupForm{PlayerCount: count, Names: make([]string, count)}
	copy(form.Names, names)
	return form
}

// roundForm prepares the round inputs. The bid is clamped into the range of
// the chosen deck count, the same way the number input bounds it in the browser.
func roundForm(state protocol.StatePayload, decksRaw, bidRaw, bidder string, teammates []string, won bool) web.RoundForm {
	decks := shared.DeckCount(atoiDefault(decksRaw, int(shared.OneDeck)))
	if !decks.Valid() {
		decks = shared.OneDeck
	}
	bids, _ := decks.BidRange()
	if bidder == "" && len(state.Roster) > 0 {
		bidder = state.Roster[0]
	}

	mates := make(map[string]bool, len(teammates))
	for _, m := range teammates {
		if m != bidder {
			mates[m] = true
		}
	}
	return web.RoundForm{
		Decks:     decks,
		Bids:      bids,
		Bid:       bids.Clamp(atoiDefault(bidRaw, bids.Min)),
		Bidder:    bidder,
		Teammates: mates,
		Won:       won,
	}
}

// isUserError reports whether err is bad input to re-prompt on rather than a failure.
func isUserError(err error) bool {
	return game.IsValidation(err) || errors.Is(err, protocol.ErrInvalidResult)
}

func warningFor(err error) string {
	switch {
	case errors.Is(err, game.ErrNoValidPlayers):
		return "Please enter at least one valid player name before starting!"
	default:
		return err.Error()
	}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
