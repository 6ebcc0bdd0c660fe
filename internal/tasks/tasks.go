package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/allplay/internal/services"
	"github.com/desertthunder/allplay/internal/shared"
	"golang.org/x/time/rate"
)

// SongAdder is the part of the library Fill writes into.
type SongAdder interface {
	AddSong(ctx context.Context, title, videoID string) error
}

// PlaylistEngine runs bulk playlist operations.
type PlaylistEngine struct {
	searcher services.Searcher
	library  SongAdder
}

// NewPlaylistEngine creates a new PlaylistEngine. Either dependency may be nil
// when only the operations that do not need it are used.
func NewPlaylistEngine(searcher services.Searcher, library SongAdder) *PlaylistEngine {
	return &PlaylistEngine{searcher: searcher, library: library}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// FillOpts configures [PlaylistEngine.Fill].
type FillOpts struct {
	NumWorkers int     // Concurrent searches (default: 3, max: 10)
	RateLimit  float64 // Searches per second (default: 2)
}

// QueryResult is the outcome of one query.
type QueryResult struct {
	Query string
	Match *services.SearchResult // Top hit (nil if none)
	Added bool                   // False when the song was already in the playlist
	Error error
}

// FillResult summarizes a fill run.
type FillResult struct {
	Results []QueryResult
	Added   int
	Skipped int
	Failed  int
}

type queryJob struct {
	index int
	query string
}

// Fill searches every query and adds each top hit to the active playlist.
//
// Blank lines are ignored. Searches run concurrently, additions happen afterwards
// in the original query order so the playlist order matches the input.
func (e *PlaylistEngine) Fill(ctx context.Context, progress chan<- ProgressUpdate, queries []string, opts FillOpts) (*FillResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: search not configured", shared.ErrServiceUnavailable)
	}
	if e.library == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}

	cleaned := make([]string, 0, len(queries))
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			cleaned = append(cleaned, q)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no queries", shared.ErrEmptyQuery)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	total := len(cleaned)
	result := &FillResult{Results: make([]QueryResult, total)}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan queryJob, total)
	for i, q := range cleaned {
		jobs <- queryJob{index: i, query: q}
	}
	close(jobs)

	done := make(chan int, total)
	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.searchWorker(ctx, &wg, limiter, jobs, result.Results, done)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	e.sendProgress(progress, searchStartUpdate(total))
	completed := 0
	for idx := range done {
		completed++
		e.sendProgress(progress, searchDoneUpdate(completed, total, result.Results[idx]))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	for i := range result.Results {
		res := &result.Results[i]
		if res.Error != nil {
			result.Failed++
			continue
		}

		err := e.library.AddSong(ctx, res.Match.Title, res.Match.VideoID)
		switch {
		case errors.Is(err, shared.ErrDuplicateSong):
			result.Skipped++
		case err != nil:
			res.Error = err
			result.Failed++
			continue
		default:
			res.Added = true
			result.Added++
		}
		e.sendProgress(progress, addSongUpdate(i+1, total, res.Match, res.Added))
	}
	return result, nil
}

// searchWorker fills results[job.index] for each job and reports the index on done.
func (e *PlaylistEngine) searchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan queryJob,
	results []QueryResult,
	done chan<- int,
) {
	defer wg.Done()

	for job := range jobs {
		res := QueryResult{Query: job.query}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results[job.index] = res
			done <- job.index
			continue
		}

		hits, err := e.searcher.Search(ctx, job.query)
		switch {
		case err != nil:
			res.Error = err
		case len(hits) == 0:
			res.Error = fmt.Errorf("no results")
		default:
			hit := hits[0]
			res.Match = &hit
		}

		results[job.index] = res
		done <- job.index
	}
}
