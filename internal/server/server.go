package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/kaizen/internal/engine"
	"github.com/lazypower/kaizen/internal/logger"
	"github.com/lazypower/kaizen/internal/recall"
	"github.com/lazypower/kaizen/internal/records"
	"github.com/lazypower/kaizen/internal/taxonomy"
)

// Server is the kaizen HTTP API server.
type Server struct {
	eng     *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the given engine and version string.
func New(eng *engine.Engine, version string) *Server {
	s := &Server{
		eng:     eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/abilities", s.handleTree)
		r.Post("/abilities", s.handleAddAbility)
		r.Get("/abilities/{name}", s.handleGetAbility)
		r.Patch("/abilities/{name}", s.handleUpdateAbility)
		r.Delete("/abilities/{name}", s.handleRemoveAbility)
		r.Post("/abilities/{name}/points", s.handleAddPoint)
		r.Delete("/abilities/{name}/points/{index}", s.handleRemovePoint)

		r.Get("/recall/due", s.handleDue)
		r.Get("/recall/study", s.handleStudy)
		r.Post("/recall/learn", s.handleLearn)
		r.Post("/recall/recalled", s.handleRecalled)

		r.Get("/progress", s.handleProgress)
		r.Post("/progress/sync", s.handleSync)
		r.Put("/progress/{date}", s.handleSetNotes)

		r.Get("/goals", s.handleGoals)
		r.Post("/goals", s.handleAddGoal)
		r.Post("/goals/{index}/complete", s.handleCompleteGoal)
		r.Delete("/goals/{index}", s.handleRemoveGoal)

		r.Get("/diary", s.handleDiary)
		r.Post("/diary", s.handleAddDiary)
		r.Get("/diary/{date}", s.handleDiaryEntry)
		r.Delete("/diary/{date}", s.handleRemoveDiary)

		r.Get("/summaries", s.handleSummaries)
		r.Post("/summaries", s.handleAddSummary)
		r.Delete("/summaries/{index}", s.handleRemoveSummary)

		r.Get("/tasks", s.handleTasks)
		r.Post("/tasks", s.handleAddTask)
		r.Post("/tasks/{name}/progress", s.handleRecordProgress)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"today":   s.eng.Today().String(),
		"sync":    s.eng.SyncMode().String(),
	}
	if p, ok := s.eng.Backend().(interface{ Ping() error }); ok {
		resp["db"] = p.Ping() == nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps domain errors to HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, taxonomy.ErrUnknownTag),
		errors.Is(err, taxonomy.ErrPointIndex),
		errors.Is(err, records.ErrUnknownTask),
		errors.Is(err, records.ErrGoalIndex),
		errors.Is(err, records.ErrUnknownDay),
		errors.Is(err, records.ErrSummaryIndex):
		status = http.StatusNotFound
	case errors.Is(err, taxonomy.ErrDuplicateName),
		errors.Is(err, taxonomy.ErrCycle),
		errors.Is(err, taxonomy.ErrHasChildren),
		errors.Is(err, recall.ErrAlreadyLearned),
		errors.Is(err, recall.ErrNotLearned),
		errors.Is(err, records.ErrDuplicateTask),
		errors.Is(err, records.ErrDuplicateDay):
		status = http.StatusConflict
	case errors.Is(err, taxonomy.ErrEmptyName),
		errors.Is(err, taxonomy.ErrEmptyContent),
		errors.Is(err, taxonomy.ErrUnknownParent),
		errors.Is(err, records.ErrProgress),
		errors.Is(err, records.ErrEmptyText):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error("server: request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// param returns a decoded URL parameter. chi matches against RawPath when
// the path holds escapes such as %2F, and against the decoded Path
// otherwise, so only the former needs unescaping.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
