package fetch

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/elly-uk/streaming-data-project/internal/article"
	"github.com/elly-uk/streaming-data-project/internal/event"
	"github.com/elly-uk/streaming-data-project/internal/guardian"
)

// Service fetches one page of Guardian results for a search term,
// normalizes them and publishes each surviving record to the queue.
type Service struct {
	apiKey      string
	queueTarget string
	client      guardian.SearchClient
	publisher   event.Publisher
	archive     article.Repository // nil disables the publish audit log
	logger      *log.Logger
}

func NewService(
	apiKey, queueTarget string,
	client guardian.SearchClient,
	publisher event.Publisher,
	archive article.Repository,
	logger *log.Logger,
) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		apiKey:      apiKey,
		queueTarget: queueTarget,
		client:      client,
		publisher:   publisher,
		archive:     archive,
		logger:      logger,
	}
}

// FetchAndPublish runs one invocation end to end and returns the articles
// that were handed to the queue.
//
// Failures split into two categories. Transport failures reaching the API
// are returned to the caller. Anything else that goes wrong after
// validation, a malformed response body or a queue send error included,
// is logged and absorbed into an empty result: callers see zero articles,
// not an error. Messages already sent before a mid-list publish failure
// stay sent.
func (s *Service) FetchAndPublish(ctx context.Context, searchTerm, dateFrom string) ([]article.Article, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(searchTerm) == "" {
		return nil, ErrEmptySearchTerm
	}
	if s.queueTarget == "" {
		return nil, ErrMissingQueueTarget
	}

	req := guardian.SearchRequest{
		SearchTerm: searchTerm,
		DateFrom:   dateFrom,
	}

	results, err := s.client.Search(ctx, s.apiKey, req)
	if err != nil {
		if classified := s.classify(err); classified != nil {
			return nil, classified
		}
		return []article.Article{}, nil
	}

	articles := make([]article.Article, 0, len(results))
	for _, raw := range results {
		a, ok := guardian.Normalize(raw)
		if !ok {
			continue
		}
		articles = append(articles, a)
	}

	for i := range articles {
		if err := s.publisher.PublishArticle(ctx, &articles[i]); err != nil {
			if classified := s.classify(err); classified != nil {
				return nil, classified
			}
			return []article.Article{}, nil
		}
		s.record(ctx, &articles[i])
	}

	s.logger.Printf("published %d of %d fetched articles for %q", len(articles), len(results), searchTerm)
	return articles, nil
}

// classify applies the propagation policy: transport errors bubble up,
// everything else degrades to an empty successful result.
func (s *Service) classify(err error) error {
	var transport *guardian.TransportError
	if errors.As(err, &transport) {
		s.logger.Printf("error fetching articles: %v", err)
		return err
	}

	s.logger.Printf("unexpected error: %v", err)
	return nil
}

// record writes the article to the audit log when one is configured.
// Archive failures never affect the invocation outcome.
func (s *Service) record(ctx context.Context, a *article.Article) {
	if s.archive == nil {
		return
	}
	if err := s.archive.RecordPublished(ctx, a); err != nil {
		s.logger.Printf("failed to record published article %s: %v", a.WebURL, err)
	}
}
