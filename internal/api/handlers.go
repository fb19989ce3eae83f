package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmcmaster/rheum-biologics/internal/ingest"
	"github.com/cmcmaster/rheum-biologics/internal/model"
	"github.com/cmcmaster/rheum-biologics/internal/notify"
	"github.com/cmcmaster/rheum-biologics/internal/store"
)

const (
	defaultLimit = 25
	maxLimit     = 200
)

// CombinationStore is the read surface the handlers consume.
type CombinationStore interface {
	Search(ctx context.Context, f store.Filters, limit, offset int) (*store.PaginatedResult, error)
	Lookup(ctx context.Context, column string, f store.Filters) ([]string, error)
	Schedules(ctx context.Context) ([]model.ScheduleEntry, error)
}

// IngestFunc triggers one ingestion run.
type IngestFunc func(ctx context.Context) (*ingest.Result, error)

// lookupRoutes maps URL segments onto store columns.
var lookupRoutes = map[string]string{
	"drugs":            "drug",
	"brands":           "brand",
	"formulations":     "formulation",
	"indications":      "indication",
	"treatment-phases": "treatment_phase",
	"hospital-types":   "hospital_type",
}

// parseMulti splits a comma-separated query value, also accepting repeated
// parameters, into a clean slice.
func parseMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseFilters(r *http.Request) store.Filters {
	q := r.URL.Query()
	f := store.Filters{
		Drug:            parseMulti(q["drug"]),
		Brand:           parseMulti(q["brand"]),
		Formulation:     parseMulti(q["formulation"]),
		Indication:      parseMulti(q["indication"]),
		TreatmentPhase:  parseMulti(q["treatment_phase"]),
		HospitalType:    parseMulti(q["hospital_type"]),
		AuthorityMethod: parseMulti(q["authority_method"]),
		Sort:            q.Get("sort"),
	}

	if v := q.Get("schedule_year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			f.ScheduleYear = &year
		}
	}
	if v := q.Get("schedule_month"); v != "" {
		f.ScheduleMonth = &v
	}
	return f
}

// parsePagination clamps limit to [1, maxLimit] and offset to >= 0.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type pageMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (s *Server) handleCombinations(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	result, err := s.store.Search(r.Context(), parseFilters(r), limit, offset)
	if err != nil {
		s.log.Error().Err(err).Msg("combination search failed")
		respondWithError(w, s.log, http.StatusInternalServerError, "search failed")
		return
	}

	respondWithJSON(w, s.log, http.StatusOK, map[string]any{
		"data": result.Data,
		"meta": pageMeta{Total: result.Total, Limit: limit, Offset: offset},
	})
}

func (s *Server) handleLookup(segment string) http.HandlerFunc {
	column := lookupRoutes[segment]
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := s.store.Lookup(r.Context(), column, parseFilters(r))
		if err != nil {
			s.log.Error().Err(err).Str("column", column).Msg("lookup failed")
			respondWithError(w, s.log, http.StatusInternalServerError, "lookup failed")
			return
		}
		if values == nil {
			values = []string{}
		}
		respondWithJSON(w, s.log, http.StatusOK, map[string]any{"data": values})
	}
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Schedules(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("schedule listing failed")
		respondWithError(w, s.log, http.StatusInternalServerError, "schedule listing failed")
		return
	}
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	respondWithJSON(w, s.log, http.StatusOK, map[string]any{"data": entries})
}

type feedbackRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Contact string `json:"contact"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, s.log, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !notify.ValidType(req.Type) {
		respondWithError(w, s.log, http.StatusBadRequest, "invalid feedback type")
		return
	}
	if len(strings.TrimSpace(req.Message)) < 5 {
		respondWithError(w, s.log, http.StatusBadRequest, "message is too short")
		return
	}

	fb := notify.Feedback{
		Type:    req.Type,
		Message: req.Message,
		Contact: req.Contact,
		Meta: map[string]string{
			"ip":         r.RemoteAddr,
			"user_agent": r.UserAgent(),
			"referer":    r.Referer(),
		},
	}

	// Delivery must not block the response.
	if s.notifier != nil {
		go s.notifier.Dispatch(context.WithoutCancel(r.Context()), fb)
	}

	respondWithJSON(w, s.log, http.StatusAccepted, map[string]any{"ok": true, "queued": true})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.runIngest == nil {
		respondWithError(w, s.log, http.StatusServiceUnavailable, "ingestion not configured")
		return
	}

	// Runs detached: a full download and rebuild takes minutes. Concurrent
	// triggers for the same schedule are resolved by the writer's
	// transaction, last commit wins.
	go func() {
		if _, err := s.runIngest(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("manual ingestion failed")
		}
	}()

	respondWithJSON(w, s.log, http.StatusAccepted, map[string]any{"ok": true, "status": "started"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, s.log, http.StatusOK, map[string]string{"status": "ok"})
}
