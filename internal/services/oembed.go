// oEmbed client for resolving video titles
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

const defaultOEmbedBaseURL = "https://www.youtube.com"

// OEmbedService resolves video ids to titles through the public oEmbed endpoint.
type OEmbedService struct {
	baseURL    string
	httpClient *http.Client
}

// NewOEmbedService creates a new oEmbed client.
func NewOEmbedService(baseURL string, client *http.Client) *OEmbedService {
	if baseURL == "" {
		baseURL = defaultOEmbedBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &OEmbedService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Lookup fetches metadata for videoID.
func (o *OEmbedService) Lookup(ctx context.Context, videoID string) (*VideoInfo, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, shared.ErrEmptyVideoID
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("url", models.Song{VideoID: videoID}.WatchURL())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/oembed?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: oembed request: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: oembed returned %d for %s", shared.ErrAPIRequest, resp.StatusCode, videoID)
	}

	var info VideoInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: failed to decode oembed response: %v", shared.ErrAPIRequest, err)
	}
	return &info, nil
}
