package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

type clusterJSON struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	ClusterID   int       `json:"cluster"`
	Summary     string    `json:"summary"`
	Keywords    []string  `json:"keywords"`
	Language    string    `json:"language,omitempty"`
	EmailIDs    []string  `json:"email_ids"`
	EmailCount  int       `json:"email_count"`
	StartDate   string    `json:"start_date"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (s *Server) handleAPIClusters(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	records, err := s.clusters.ListClusters(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("Failed to list clusters", zap.Int64("user_id", user.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, core.ErrorKind(err), "failed to list clusters")
		return
	}

	out := make([]clusterJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, clusterJSON{
			ID:          rec.ID,
			RunID:       rec.RunID,
			ClusterID:   rec.ClusterID,
			Summary:     rec.Summary,
			Keywords:    rec.Keywords,
			Language:    rec.Language,
			EmailIDs:    rec.EmailIDs,
			EmailCount:  rec.EmailCount,
			StartDate:   rec.StartDate.Format(dateLayout),
			ProcessedAt: rec.ProcessedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"clusters": out})
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	rows := s.lastReport(userFrom(r.Context()).ID)
	if rows == nil {
		rows = []core.ReportRow{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"report": rows})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}
