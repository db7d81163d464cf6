package handler

import (
	"context"
	"encoding/json"
	"log"

	"github.com/elly-uk/streaming-data-project/internal/article"
	"github.com/elly-uk/streaming-data-project/internal/ratelimit"
)

// DefaultSearchTerm is used when the trigger payload carries no term.
const DefaultSearchTerm = "machine learning"

// Event is the inbound trigger payload.
type Event struct {
	SearchTerm string `json:"search_term"`
	DateFrom   string `json:"date_from"`
}

// Result is the invocation response envelope. Body is pre-encoded JSON:
// an array of articles on success, {"error": ...} otherwise.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Fetcher is the orchestrator seen from the entry point.
type Fetcher interface {
	FetchAndPublish(ctx context.Context, searchTerm, dateFrom string) ([]article.Article, error)
}

type Handler struct {
	fetcher     Fetcher
	limiter     *ratelimit.Limiter
	defaultTerm string
	logger      *log.Logger
}

func New(fetcher Fetcher, limiter *ratelimit.Limiter, defaultTerm string, logger *log.Logger) *Handler {
	if defaultTerm == "" {
		defaultTerm = DefaultSearchTerm
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		fetcher:     fetcher,
		limiter:     limiter,
		defaultTerm: defaultTerm,
		logger:      logger,
	}
}

// Handle adapts a trigger payload into one rate-limited fetch-and-publish
// run. Every failure, the limiter rejecting the attempt included, becomes
// a 500 envelope; Handle itself never fails.
func (h *Handler) Handle(ctx context.Context, ev Event) Result {
	searchTerm := ev.SearchTerm
	if searchTerm == "" {
		searchTerm = h.defaultTerm
	}

	if err := h.limiter.Allow(); err != nil {
		return h.errorResult(err)
	}

	articles, err := h.fetcher.FetchAndPublish(ctx, searchTerm, ev.DateFrom)
	if err != nil {
		return h.errorResult(err)
	}

	if articles == nil {
		articles = []article.Article{}
	}
	body, err := json.Marshal(articles)
	if err != nil {
		return h.errorResult(err)
	}

	return Result{StatusCode: 200, Body: string(body)}
}

func (h *Handler) errorResult(err error) Result {
	h.logger.Printf("invocation failed: %v", err)

	body, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	return Result{StatusCode: 500, Body: string(body)}
}
