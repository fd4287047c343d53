package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/certvault/internal/core"
	"github.com/JonMunkholm/certvault/internal/web/templates"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status  string                   `json:"status"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// handleIndex renders the certificate page.
// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index().Render(r.Context(), w); err != nil {
		respondError(w, r, err)
	}
}

// handleHealth reports storage reachability and import slot usage.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Imports: s.service.ImportLimiterStatus()}
	if err := s.health.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		writeJSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}
