package adapthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"bodymetrics/internal/domain"
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Weight json.Number `json:"weight"`
		Height json.Number `json:"height"`
		Age    json.Number `json:"age"`
		Sex    string      `json:"sex"`
		Unit   string      `json:"unit"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	in, err := domain.ParseInput(domain.RawInput{
		Weight: body.Weight.String(),
		Height: body.Height.String(),
		Age:    body.Age.String(),
		Sex:    body.Sex,
		Unit:   body.Unit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	res, err := s.metrics.Calculate(r.Context(), in)
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":  "measurement not saved",
			"result": res,
		})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
