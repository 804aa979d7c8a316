// Package fetch retrieves a page over HTTP and distills it into the content
// snapshot the evaluation tasks consume.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/medgate/medgate/pkg/models"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 5 << 20 // 5 MiB
	userAgent       = "medgate-fetcher/1.0"
)

type Fetcher struct {
	logger *slog.Logger
	client *http.Client
}

func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		logger: logger.With("module", "fetcher"),
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// NewFetcherWithClient allows tests to inject a client bound to a test
// server.
func NewFetcherWithClient(logger *slog.Logger, client *http.Client) *Fetcher {
	return &Fetcher{
		logger: logger.With("module", "fetcher"),
		client: client,
	}
}

// Fetch downloads url and extracts the snapshot fields. The snapshot is
// assembled once per run, before dispatch, so every task sees identical
// content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.ContentSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for '%s': %w", url, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	started := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching '%s' returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of '%s': %w", url, err)
	}

	snapshot := Extract(url, string(body))

	f.logger.Info("Fetched content",
		"url", url,
		"bytes", len(body),
		"words", snapshot.WordCount,
		"duration_ms", time.Since(started).Milliseconds())

	return snapshot, nil
}
