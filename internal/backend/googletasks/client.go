// Package googletasks implements service.SeedSource by reading a Google
// Tasks list, as an alternative to the public seed endpoint.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/service"
)

const (
	// DefaultListID is the special ID for the user's default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks requested per API page.
	PageSize = 100

	// APITimeout bounds one full import, all pages included.
	APITimeout = 30 * time.Second

	// Scope is the OAuth scope needed to read Google Tasks.
	Scope = tasks.TasksReadonlyScope
)

// ErrNoCredentials indicates the OAuth client file or token is missing.
var ErrNoCredentials = errors.New("google credentials missing")

// Source reads seed records from one Google Tasks list.
type Source struct {
	svc    *tasks.Service
	listID string
}

// New creates a Source from the OAuth files in the config directory.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Source, error) {
	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%w: %s not found in %s", ErrNoCredentials, config.OAuthClientFile, cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("%w: not logged in (run: todo login)", ErrNoCredentials)
	}

	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes the access token as needed
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	return NewWithHTTPClient(ctx, httpClient, cfg.Seed.List)
}

// NewWithHTTPClient creates a Source with a custom HTTP client (for testing).
// An empty listID means the default list.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Source, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Source{svc: svc, listID: listID}, nil
}

// FetchSeedTasks implements service.SeedSource.
// Every task of the list is returned, completed ones included, in API
// order. Seed IDs are 1-based positions in that order.
func (s *Source) FetchSeedTasks(ctx context.Context) ([]service.SeedRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var records []service.SeedRecord
	err := s.svc.Tasks.List(s.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, item := range resp.Items {
				records = append(records, service.SeedRecord{
					ID:        int64(len(records) + 1),
					Body:      item.Title,
					Completed: item.Status == "completed",
				})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return records, nil
}

// wrapError classifies API errors as network errors with a friendlier message.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("%w: request timed out", service.ErrNetwork)
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("%w: token expired or revoked (run: todo login)", service.ErrNetwork)
	}

	if strings.Contains(errStr, "404") {
		return fmt.Errorf("%w: task list not found", service.ErrNetwork)
	}

	return fmt.Errorf("%w: %v", service.ErrNetwork, err)
}
