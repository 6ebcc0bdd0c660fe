// YouTube Data API [Searcher] implementation
package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const defaultMaxResults int64 = 15

// YouTubeSearch implements [Searcher] with the YouTube Data API v3.
type YouTubeSearch struct {
	client     *youtube.Service
	limiter    *rate.Limiter
	maxResults int64
	timeout    time.Duration
	logger     *log.Logger
}

// NewYouTubeSearch creates a search client from credentials and tuning config.
//
// An API key takes precedence over an access token. extra options are appended last
// (tests use them to inject an HTTP client); when they are given, credentials are optional.
func NewYouTubeSearch(ctx context.Context, creds shared.YouTubeConfig, cfg shared.SearchConfig, logger *log.Logger, extra ...option.ClientOption) (*YouTubeSearch, error) {
	var opts []option.ClientOption
	switch {
	case creds.APIKey != "":
		opts = append(opts, option.WithAPIKey(creds.APIKey))
	case creds.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
		opts = append(opts, option.WithTokenSource(ts))
	case len(extra) == 0:
		return nil, fmt.Errorf("%w: set credentials.youtube.api_key or ALLPLAY_YOUTUBE_API_KEY", shared.ErrMissingCredentials)
	}

	if creds.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(creds.Endpoint))
	}
	opts = append(opts, extra...)

	client, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create YouTube client: %v", shared.ErrServiceUnavailable, err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	if logger == nil {
		logger = log.Default()
	}

	return &YouTubeSearch{
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		maxResults: maxResults,
		timeout:    cfg.Timeout(),
		logger:     shared.WithLogger(logger, "service", "youtube"),
	}, nil
}

// Search issues search.list with part=snippet, type=video.
func (y *YouTubeSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.ErrEmptyQuery
	}

	logger := shared.WithLogger(y.logger, "request_id", shared.GenerateID(), "query", query)

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	start := time.Now()
	resp, err := y.client.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(y.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("search failed", "error", err)
		return nil, fmt.Errorf("%w: search: %v", shared.ErrAPIRequest, err)
	}

	results := make([]SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}

		title := item.Id.VideoId
		if item.Snippet != nil && item.Snippet.Title != "" {
			title = html.UnescapeString(item.Snippet.Title)
		}

		results = append(results, SearchResult{
			Title:     title,
			VideoID:   item.Id.VideoId,
			Thumbnail: models.ThumbnailURL(item.Id.VideoId, "default"),
		})
	}

	logger.Debug("search complete", "results", len(results), "elapsed", time.Since(start))
	return results, nil
}
