package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const pageSize = 10

// TransportError marks failures reaching the Guardian API: connection
// errors, timeouts and non-2xx statuses. The fetch service propagates this
// category and swallows everything else, so the distinction matters.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "guardian request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SearchClient is the read side of the Guardian content API.
type SearchClient interface {
	Search(ctx context.Context, apiKey string, req SearchRequest) ([]RawArticle, error)
}

type client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) SearchClient {
	return &client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// Search issues a single newest-first, one-page query with the term quoted
// for exact-phrase matching. A response without the expected nesting
// decodes to an empty result list, which callers treat as "no results".
func (c *client) Search(ctx context.Context, apiKey string, req SearchRequest) ([]RawArticle, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid guardian url: %w", err)
	}
	q := u.Query()
	q.Set("q", `"`+req.SearchTerm+`"`)
	q.Set("api-key", apiKey)
	q.Set("page-size", strconv.Itoa(pageSize))
	q.Set("order-by", "newest")
	q.Set("show-fields", "bodyText")
	if req.DateFrom != "" {
		q.Set("from-date", req.DateFrom)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding guardian response: %w", err)
	}

	return out.Response.Results, nil
}
