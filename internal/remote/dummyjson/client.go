// Package dummyjson implements service.SeedSource against the public
// dummyjson.com todos endpoint.
package dummyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"todo/internal/service"
)

const (
	// DefaultBaseURL is the public dummyjson host.
	DefaultBaseURL = "https://dummyjson.com"

	// TodosPath is the seed endpoint path.
	TodosPath = "/todos"
)

// Page holds the pagination metadata the endpoint returns alongside the
// records. It is decoded for logging only.
type Page struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

type todosResponse struct {
	Todos *[]seedJSON `json:"todos"`
	Page
}

type seedJSON struct {
	ID        int64   `json:"id"`
	Todo      *string `json:"todo"`
	Body      *string `json:"body"`
	Completed bool    `json:"completed"`
	UserID    int64   `json:"userId"`
}

// Client fetches seed records with a single unauthenticated GET.
// It keeps no state between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// New creates a client for baseURL (DefaultBaseURL when empty).
// A nil httpClient means http.DefaultClient; a nil logger discards logs.
func New(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// URL returns the endpoint the client fetches.
func (c *Client) URL() string {
	return c.baseURL + TodosPath
}

// FetchSeedTasks implements service.SeedSource.
func (c *Client) FetchSeedTasks(ctx context.Context) ([]service.SeedRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", service.ErrNetwork, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", service.ErrNetwork, err)
	}

	records, page, err := decode(data)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("fetched %d seed records from %s (total=%d skip=%d limit=%d)",
		len(records), c.URL(), page.Total, page.Skip, page.Limit)
	return records, nil
}

// decode parses a todos response body.
func decode(data []byte) ([]service.SeedRecord, Page, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Page{}, service.ErrNoData
	}

	var resp todosResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, Page{}, fmt.Errorf("%w: %v", service.ErrDecode, err)
	}
	if resp.Todos == nil {
		return nil, Page{}, fmt.Errorf("%w: missing todos", service.ErrDecode)
	}

	records := make([]service.SeedRecord, 0, len(*resp.Todos))
	for _, item := range *resp.Todos {
		var body string
		switch {
		case item.Todo != nil:
			body = *item.Todo
		case item.Body != nil:
			body = *item.Body
		default:
			return nil, Page{}, fmt.Errorf("%w: todo %d has no text", service.ErrDecode, item.ID)
		}
		records = append(records, service.SeedRecord{
			ID:        item.ID,
			Body:      body,
			Completed: item.Completed,
			OwnerID:   item.UserID,
		})
	}
	return records, resp.Page, nil
}
