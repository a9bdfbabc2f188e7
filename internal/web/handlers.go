package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RevCBH/planrate/internal/archive"
	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/plan"
)

// maxBodyBytes caps request bodies; plans and feedback are small
const maxBodyBytes = 4 << 20

// Generator produces plans. *client.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req plan.GenerateRequest) (*plan.Plan, error)
}

// HealthHandler reports that the service is up.
// GET /
func HealthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Health{
			Status:  "online",
			Service: ServiceName,
			Version: version,
		})
	}
}

// GeneratePlanHandler validates a generate request and forwards it to the
// upstream generation service. A nil generator answers 501.
// POST /api/generate-plan
func GeneratePlanHandler(gen Generator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := plan.NewGenerateRequest("")
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if gen == nil {
			writeError(w, http.StatusNotImplemented, "Plan generation is not configured on this server")
			return
		}

		p, err := gen.Generate(r.Context(), req)
		if err != nil {
			status := http.StatusBadGateway
			var remote *client.RemoteError
			if errors.As(err, &remote) && remote.Status >= 400 && remote.Status < 500 {
				status = remote.Status
			}
			logger.Warn("upstream generate failed", "error", err)
			writeError(w, status, client.UserMessage(err))
			return
		}
		if p.Prompt == "" {
			p.Prompt = req.Prompt
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// SubmitFeedbackHandler validates a submission, aggregates it into a
// dataset and archives it.
// POST /api/submit-feedback
func SubmitFeedbackHandler(store Store, opts dataset.Options, bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub dataset.Submission
		if err := decodeJSON(r, &sub); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := dataset.ValidateSubmission(sub); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		d := dataset.Aggregate(sub, opts)
		entry, err := store.Save(r.Context(), d)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing feedback: %v", err))
			return
		}

		location := store.Location(entry.ID)
		bus.Emit(events.NewEvent(events.DatasetArchived, d.SessionID).WithPayload(map[string]any{
			"id":            entry.ID,
			"total_steps":   d.AggregatedMetrics.TotalSteps,
			"overall_score": d.AggregatedMetrics.OverallScore,
		}))

		writeJSON(w, http.StatusOK, dataset.SubmitResult{
			Success:  true,
			Dataset:  d,
			FilePath: location,
		})
	}
}

// ExportDatasetHandler returns the latest dataset of a session in the
// requested format.
// GET /api/export-dataset/{session_id}?format=json|jsonl|csv
func ExportDatasetHandler(store Store, bus *events.Bus, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("session_id")

		id, d, err := store.Latest(r.Context(), sessionID)
		if errors.Is(err, archive.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error loading dataset: %v", err))
			return
		}

		format, err := dataset.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		body, err := dataset.Encode(d, format)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error encoding dataset: %v", err))
			return
		}

		if err := store.RecordExport(r.Context(), id, format); err != nil {
			logger.Warn("failed to record export", "dataset", id, "error", err)
		}
		bus.Emit(events.NewEvent(events.DatasetExported, sessionID).WithPayload(map[string]any{
			"id":     id,
			"format": string(format),
		}))

		w.Header().Set("Content-Type", format.ContentType())
		if format == dataset.FormatCSV {
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rlhf_%s.csv"`, d.ShortSessionID()))
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// EventsHandler streams server events (archived and exported datasets)
// to the client as SSE.
// GET /api/events
func EventsHandler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "SSE not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		c := NewClient(ulid.Make().String())
		if !hub.Register(c) {
			writeError(w, http.StatusServiceUnavailable, "Server is shutting down")
			return
		}
		logger.Debug("event subscriber connected", "subscriber", c.id)
		defer func() {
			hub.Unregister(c)
			logger.Debug("event subscriber left", "subscriber", c.id)
		}()

		// Send initial comment to establish connection
		fmt.Fprintf(w, ": connected\n\n")
		flusher.Flush()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-c.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
				flusher.Flush()
			}
		}
	}
}

// WithCORS adds CORS headers for the allowed origins and answers
// preflight requests.
func WithCORS(allowed []string, next http.Handler) http.Handler {
	anyOrigin := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			anyOrigin = true
		}
		set[strings.TrimRight(o, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (anyOrigin || set[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
				w.Header().Set("Access-Control-Allow-Headers", h)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithLogging logs each request at debug level
func WithLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the logging wrapper
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorBody{Detail: detail})
}
