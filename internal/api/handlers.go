package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"manasim/internal/api/response"
	"manasim/internal/deck"
	"manasim/internal/mana"
	"manasim/internal/report"
	"manasim/internal/sim"
	"manasim/internal/storage"
)

// maxBodyBytes bounds the size of a simulation request.
const maxBodyBytes = 1 << 20

var errHistoryDisabled = errors.New("run history is not enabled")

// SimulationRequest is the body of POST /api/v1/simulations.
type SimulationRequest struct {
	// Deck is a deck document in the same JSON shape as a deck file.
	Deck         json.RawMessage `json:"deck"`
	Simulations  int             `json:"simulations"`
	Turns        int             `json:"turns"`
	Seed         int64           `json:"seed"`
	MultiColor   string          `json:"multicolor"`
	TraceSamples *int            `json:"trace_samples"`
}

// SimulationResponse is the result of a simulation request.
type SimulationResponse struct {
	RunID   string        `json:"run_id,omitempty"`
	Deck    string        `json:"deck"`
	Seed    int64         `json:"seed"`
	Summary sim.Summary   `json:"summary"`
	Rating  report.Rating `json:"rating"`
	Stats   *sim.Stats    `json:"stats"`
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			response.TooManyRequests(w, errors.New("too many simulation requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"status":  "ok",
		"history": s.store != nil,
	})
}

// options converts a request into run options, applying defaults and limits.
func (s *Server) options(req *SimulationRequest) (sim.Options, error) {
	opts := sim.DefaultOptions()
	opts.Workers = s.cfg.Workers
	opts.MultiColor = s.cfg.MultiColor

	opts.Simulations = req.Simulations
	if opts.Simulations == 0 {
		opts.Simulations = s.cfg.DefaultSimulations
	}
	opts.Turns = req.Turns
	if opts.Turns == 0 {
		opts.Turns = s.cfg.DefaultTurns
	}
	if opts.Simulations < 0 || opts.Simulations > s.cfg.MaxSimulations {
		return opts, fmt.Errorf("simulations must be between 1 and %d", s.cfg.MaxSimulations)
	}
	if opts.Turns < 0 || opts.Turns > s.cfg.MaxTurns {
		return opts, fmt.Errorf("turns must be between 1 and %d", s.cfg.MaxTurns)
	}

	if req.MultiColor != "" {
		p, err := mana.ParsePolicy(req.MultiColor)
		if err != nil {
			return opts, err
		}
		opts.MultiColor = p
	}
	if req.TraceSamples != nil {
		if *req.TraceSamples < 0 || *req.TraceSamples > s.cfg.MaxTraceSamples {
			return opts, fmt.Errorf("trace_samples must be between 0 and %d", s.cfg.MaxTraceSamples)
		}
		opts.TraceSamples = *req.TraceSamples
	}
	opts.TraceSamples = min(opts.TraceSamples, s.cfg.MaxTraceSamples)

	opts.Seed = req.Seed
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return opts, nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Deck) == 0 {
		response.BadRequest(w, errors.New("deck is required"))
		return
	}

	d, err := deck.Parse(req.Deck, deck.FormatJSON)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	opts, err := s.options(&req)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	stats, err := sim.RunContext(r.Context(), d, opts)
	if err != nil {
		if r.Context().Err() != nil {
			log.Printf("Simulation stopped: %v", err)
			return
		}
		response.BadRequest(w, err)
		return
	}

	summary := stats.Summary()
	resp := SimulationResponse{
		Deck:    d.Name,
		Seed:    opts.Seed,
		Summary: summary,
		Rating:  report.Rate(summary),
		Stats:   stats,
	}

	if s.store != nil {
		cmdr, _ := d.Commander()
		run := &storage.Run{
			DeckName:    d.Name,
			Commander:   cmdr.Name(),
			Simulations: opts.Simulations,
			Turns:       opts.Turns,
			Seed:        opts.Seed,
			MultiColor:  string(opts.MultiColor),
			Stats:       stats,
		}
		if err := s.store.SaveRun(r.Context(), run); err != nil {
			log.Printf("Failed to save run: %v", err)
		} else {
			resp.RunID = run.ID
		}
	}

	response.Created(w, resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		response.ServiceUnavailable(w, errHistoryDisabled)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.BadRequest(w, fmt.Errorf("invalid limit: %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		response.ServiceUnavailable(w, errHistoryDisabled)
		return
	}

	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		response.NotFound(w, err)
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, run)
}
