package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/elly-uk/streaming-data-project/internal/article"
	"github.com/elly-uk/streaming-data-project/internal/guardian"
)

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, apiKey string, req guardian.SearchRequest) ([]guardian.RawArticle, error) {
	args := m.Called(ctx, apiKey, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]guardian.RawArticle), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishArticle(ctx context.Context, a *article.Article) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) RecordPublished(ctx context.Context, a *article.Article) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type ServiceSuite struct {
	suite.Suite

	client    *mockSearchClient
	publisher *mockPublisher

	logBuf *bytes.Buffer
	logger *log.Logger

	svc *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.client = &mockSearchClient{}
	s.publisher = &mockPublisher{}

	s.logBuf = &bytes.Buffer{}
	s.logger = log.New(s.logBuf, "", 0)

	s.svc = NewService("test-key", "article.published", s.client, s.publisher, nil, s.logger)
}

func strPtr(v string) *string { return &v }

func wellFormedRaw() guardian.RawArticle {
	return guardian.RawArticle{
		WebPublicationDate: strPtr("2024-01-01T10:00:00Z"),
		WebTitle:           strPtr("Test Article"),
		WebURL:             strPtr("http://test.com"),
		Fields:             json.RawMessage(`{"bodyText":"Test content"}`),
	}
}

func (s *ServiceSuite) TestFetchAndPublish_HappyPath() {
	s.client.
		On("Search", mock.Anything, "test-key", guardian.SearchRequest{SearchTerm: "test", DateFrom: "2024-01-01"}).
		Return([]guardian.RawArticle{wellFormedRaw()}, nil).
		Once()
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "2024-01-01")

	s.NoError(err)
	s.Require().Len(articles, 1)
	s.Equal("Test Article", articles[0].WebTitle)
	s.Equal("http://test.com", articles[0].WebURL)
	s.Equal("2024-01-01T10:00:00Z", articles[0].WebPublicationDate)
	s.Equal("Test content", articles[0].ContentPreview)

	s.client.AssertExpectations(s.T())
	s.publisher.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestFetchAndPublish_DropsNonConformingResults() {
	missingTitle := wellFormedRaw()
	missingTitle.WebTitle = nil

	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return([]guardian.RawArticle{wellFormedRaw(), missingTitle}, nil).
		Once()
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.Len(articles, 1)
	s.publisher.AssertNumberOfCalls(s.T(), "PublishArticle", 1)
}

func (s *ServiceSuite) TestFetchAndPublish_EmptyResultsPublishesNothing() {
	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return([]guardian.RawArticle{}, nil).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.NotNil(articles)
	s.Empty(articles)
	s.publisher.AssertNotCalled(s.T(), "PublishArticle", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchAndPublish_MissingAPIKey() {
	s.svc = NewService("", "article.published", s.client, s.publisher, nil, s.logger)

	_, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.ErrorIs(err, ErrMissingAPIKey)
	s.client.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchAndPublish_EmptySearchTerm() {
	for _, term := range []string{"", "   ", "\t\n"} {
		_, err := s.svc.FetchAndPublish(context.Background(), term, "")
		s.ErrorIs(err, ErrEmptySearchTerm)
	}
	s.client.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchAndPublish_MissingQueueTarget() {
	s.svc = NewService("test-key", "", s.client, s.publisher, nil, s.logger)

	_, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.ErrorIs(err, ErrMissingQueueTarget)
	s.client.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchAndPublish_TransportErrorPropagates() {
	transportErr := &guardian.TransportError{Err: errors.New("connection refused")}

	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return(nil, transportErr).
		Once()

	_, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.Require().Error(err)
	var got *guardian.TransportError
	s.True(errors.As(err, &got))
	s.Contains(s.logBuf.String(), "error fetching articles")
	s.publisher.AssertNotCalled(s.T(), "PublishArticle", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestFetchAndPublish_DecodeErrorDegradesToEmpty() {
	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return(nil, errors.New("decoding guardian response: unexpected EOF")).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.NotNil(articles)
	s.Empty(articles)
	s.Contains(s.logBuf.String(), "unexpected error")
}

func (s *ServiceSuite) TestFetchAndPublish_PublishErrorDegradesToEmpty() {
	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return([]guardian.RawArticle{wellFormedRaw(), wellFormedRaw()}, nil).
		Once()

	// first send lands, second fails; the first message stays sent
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(errors.New("channel closed")).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.NotNil(articles)
	s.Empty(articles)
	s.publisher.AssertNumberOfCalls(s.T(), "PublishArticle", 2)
	s.Contains(s.logBuf.String(), "unexpected error")
}

func (s *ServiceSuite) TestFetchAndPublish_RecordsPublishedArticles() {
	archive := &mockArchive{}
	s.svc = NewService("test-key", "article.published", s.client, s.publisher, archive, s.logger)

	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return([]guardian.RawArticle{wellFormedRaw()}, nil).
		Once()
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()
	archive.
		On("RecordPublished", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.Len(articles, 1)
	archive.AssertExpectations(s.T())
}

func (s *ServiceSuite) TestFetchAndPublish_ArchiveFailureIsIgnored() {
	archive := &mockArchive{}
	s.svc = NewService("test-key", "article.published", s.client, s.publisher, archive, s.logger)

	s.client.
		On("Search", mock.Anything, "test-key", mock.Anything).
		Return([]guardian.RawArticle{wellFormedRaw()}, nil).
		Once()
	s.publisher.
		On("PublishArticle", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(nil).
		Once()
	archive.
		On("RecordPublished", mock.Anything, mock.AnythingOfType("*article.Article")).
		Return(errors.New("mongo down")).
		Once()

	articles, err := s.svc.FetchAndPublish(context.Background(), "test", "")

	s.NoError(err)
	s.Len(articles, 1)
	s.Contains(s.logBuf.String(), "failed to record published article")
}
