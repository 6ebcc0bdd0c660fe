package services

import (
	"context"
	"sync/atomic"

	"github.com/desertthunder/allplay/internal/shared"
)

// Searcher finds playable videos for a free-text query.
type Searcher interface {
	// Search returns matching videos. Blank queries fail with [shared.ErrEmptyQuery].
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// TitleResolver looks up metadata for a known video id.
type TitleResolver interface {
	Lookup(ctx context.Context, videoID string) (*VideoInfo, error)
}

// SearchResult is one playable hit.
type SearchResult struct {
	Title     string `json:"title"`
	VideoID   string `json:"videoId"`
	Thumbnail string `json:"thumbnail"`
}

// VideoInfo is the subset of oEmbed metadata allplay uses.
type VideoInfo struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Sequencer issues monotonically increasing search tokens.
//
// The zero value is ready to use and safe for concurrent use.
type Sequencer struct {
	latest atomic.Uint64
}

// Begin issues a new token, superseding every earlier one.
func (s *Sequencer) Begin() uint64 {
	return s.latest.Add(1)
}

// IsCurrent reports whether token is the latest one issued.
func (s *Sequencer) IsCurrent(token uint64) bool {
	return s.latest.Load() == token
}

// LatestSearch wraps a [Searcher] so only the most recently issued search returns results.
type LatestSearch struct {
	searcher Searcher
	seq      Sequencer
}

// NewLatestSearch wraps s with a stale-response guard.
func NewLatestSearch(s Searcher) *LatestSearch {
	return &LatestSearch{searcher: s}
}

// Search runs the query. If another Search started before this one finished,
// the results are discarded and [shared.ErrStaleSearch] is returned.
func (l *LatestSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	token := l.seq.Begin()
	results, err := l.searcher.Search(ctx, query)
	if !l.seq.IsCurrent(token) {
		return nil, shared.ErrStaleSearch
	}
	return results, err
}
