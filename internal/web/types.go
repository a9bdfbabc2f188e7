package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/RevCBH/planrate/internal/archive"
	"github.com/RevCBH/planrate/internal/dataset"
)

// ServiceName is reported by the health endpoint
const ServiceName = "PDDL RLHF API"

// Store persists aggregated datasets. *archive.Archive satisfies it.
type Store interface {
	Save(ctx context.Context, d *dataset.Dataset) (archive.Entry, error)
	Latest(ctx context.Context, sessionID string) (string, *dataset.Dataset, error)
	RecordExport(ctx context.Context, datasetID string, format dataset.Format) error
	Location(id string) string
}

// Config holds the server's dependencies and settings
type Config struct {
	// Addr is the listen address (default: ":8000")
	Addr string

	// Version is reported by the health endpoint
	Version string

	// Store receives accepted datasets (required)
	Store Store

	// Model is recorded in model_metadata when the plan names none
	Model string

	// UpstreamGenerateURL is where generate requests are forwarded.
	// Empty answers them with 501.
	UpstreamGenerateURL string

	// UpstreamClient performs forwarded requests (default: 120s timeout)
	UpstreamClient *http.Client

	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string

	// Logger receives request and event logs (default: slog.Default())
	Logger *slog.Logger

	// Now stamps datasets (default: time.Now)
	Now func() time.Time
}

// Health is the body of GET /
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorBody is the body of every error response
type ErrorBody struct {
	Detail string `json:"detail"`
}
