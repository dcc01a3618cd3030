package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/inactivity"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
)

// ProgressFunc is called after each search page with the running totals.
type ProgressFunc func(threads, pages int)

// FetchResult contains the threads accumulated by a search.
type FetchResult struct {
	Threads []model.Thread
	Pages   int

	// StoppedForQuota is set when the graphql quota reached the buffer
	// before the last page.
	StoppedForQuota bool
	QuotaAtStop     model.QuotaStatus

	// Err is the request error that ended the search early, if any. The
	// threads gathered before it are still valid.
	Err error
	// RateLimited is set when Err came from an exhausted rate limit.
	RateLimited bool
}

// Fetcher pages through the repository search one page at a time.
type Fetcher struct {
	api        ghclient.ThreadSearcher
	guard      inactivity.QuotaChecker
	buffer     int
	onProgress ProgressFunc
}

// NewFetcher creates a Fetcher. onProgress may be nil (no-op).
func NewFetcher(api ghclient.ThreadSearcher, guard inactivity.QuotaChecker, buffer int, onProgress ProgressFunc) *Fetcher {
	return &Fetcher{
		api:        api,
		guard:      guard,
		buffer:     buffer,
		onProgress: onProgress,
	}
}

func (f *Fetcher) reportProgress(threads, pages int) {
	if f.onProgress != nil {
		f.onProgress(threads, pages)
	}
}

// FetchThreads returns every closed, unlocked thread in repo, or as many as
// could be fetched before the quota buffer was reached or a request failed.
// Neither case is an error; both are recorded on the result.
func (f *Fetcher) FetchThreads(ctx context.Context, repo model.Repository) *FetchResult {
	result := &FetchResult{Threads: []model.Thread{}}
	cursor := ""

	for {
		page, err := f.api.SearchThreads(ctx, repo, cursor)
		if err != nil {
			log.Error(fmt.Sprintf("Failed to fetch threads for %s: %v", repo.FullName(), err), "page", result.Pages+1)
			result.Err = err
			result.RateLimited = errors.Is(err, ghclient.ErrRateLimited)
			return result
		}

		result.Pages++
		result.Threads = append(result.Threads, page.Threads...)
		log.Debug("fetched search page", "page", result.Pages, "threads", len(page.Threads), "total", len(result.Threads))
		f.reportProgress(len(result.Threads), result.Pages)

		q, exhausted := f.guard.Exhausted(ctx, constants.ResourceGraphQL, f.buffer)
		if exhausted {
			log.Warn(fmt.Sprintf("Rate limit buffer reached, stopping search early. Quota resets at %s", q.ResetHuman),
				"remaining", q.Remaining, "buffer", f.buffer, "fetched", len(result.Threads))
			result.StoppedForQuota = true
			result.QuotaAtStop = q
			return result
		}

		if !page.HasNextPage {
			return result
		}
		cursor = page.EndCursor
	}
}
