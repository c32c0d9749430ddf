package adapthttp

import (
	"errors"
	"net/http"

	"bodymetrics/internal/app"
	"bodymetrics/internal/domain"
)

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"items": s.history.All()})

	case http.MethodDelete:
		if r.URL.Query().Get("confirm") != "true" {
			writeError(w, http.StatusBadRequest, errors.New("clearing history needs confirm=true"))
			return
		}
		if err := s.history.Clear(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDietLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var level domain.ActivityLevel
	if v := r.URL.Query().Get("activity"); v != "" {
		parsed, err := domain.ParseActivityLevel(v)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		level = parsed
	}

	plan, err := s.metrics.LatestPlan(level)
	if errors.Is(err, app.ErrNoMeasurements) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if errors.Is(err, app.ErrPlanUnavailable) {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
