// Package server serves the daemon's read-only status API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/habitloop/internal/clock"
	"github.com/julianstephens/habitloop/internal/constants"
	"github.com/julianstephens/habitloop/internal/logger"
	"github.com/julianstephens/habitloop/internal/models"
	"github.com/julianstephens/habitloop/internal/preferences"
	"github.com/julianstephens/habitloop/internal/storage"
)

type Server struct {
	habits  *storage.HabitStore
	prefs   *preferences.Store
	clock   clock.Clock
	router  chi.Router
	version string
	started time.Time
}

func New(habits *storage.HabitStore, prefs *preferences.Store, c clock.Clock, version string) *Server {
	if c == nil {
		c = clock.System{}
	}
	s := &Server{
		habits:  habits,
		prefs:   prefs,
		clock:   c,
		version: version,
		started: c.Now(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/habits", s.handleHabits)
		r.Get("/habits/{habitID}/streaks", s.handleStreaks)
	})
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  s.clock.Now().Sub(s.started).Seconds(),
		"habits":  s.habits.Len(),
		"storage": s.habits.Provider().GetConfigPath(),
	})
}

type habitStatus struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Archived       bool    `json:"archived"`
	Score          float64 `json:"score"`
	CurrentStreak  int     `json:"current_streak"`
	CompletedToday bool    `json:"completed_today"`
	NextReminder   string  `json:"next_reminder,omitempty"`
	NextReminderIn string  `json:"next_reminder_in,omitempty"`
}

func (s *Server) handleHabits(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	today := s.prefs.Today(now)

	matcher := models.Active
	if r.URL.Query().Get("archived") == "true" {
		matcher = models.All
	}
	matcher, err := matcher.WithName(r.URL.Query().Get("match"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	alarms, err := s.habits.Provider().GetAlarms()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load alarms")
		return
	}
	next := make(map[string]models.Alarm, len(alarms))
	for _, a := range alarms {
		next[a.HabitID] = a
	}

	out := []habitStatus{}
	for _, h := range s.habits.Matching(matcher, today) {
		score, err := h.CurrentScore(today)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		streak, err := h.CurrentStreak(today)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		status := habitStatus{
			ID:             h.ID(),
			Name:           h.Name(),
			Archived:       h.Data().Archived,
			Score:          score,
			CurrentStreak:  streak,
			CompletedToday: h.IsCompletedToday(today),
		}
		if a, ok := next[h.ID()]; ok {
			fire := a.FireTime()
			status.NextReminder = fire.Format(time.RFC3339)
			status.NextReminderIn = humanize.RelTime(fire, now, "ago", "from now")
		}
		out = append(out, status)
	}
	writeJSON(w, http.StatusOK, out)
}

type streakJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Length int    `json:"length"`
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	h, err := s.habits.Get(chi.URLParam(r, "habitID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h == nil {
		writeError(w, http.StatusNotFound, "habit not found")
		return
	}

	limit := constants.DefaultBestStreaks
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	streaks, err := h.BestStreaks(limit, s.prefs.Today(s.clock.Now()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]streakJSON, 0, len(streaks))
	for _, st := range streaks {
		out = append(out, streakJSON{Start: st.Start.String(), End: st.End.String(), Length: st.Length()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"habit":   h.ID(),
		"streaks": out,
	})
}
