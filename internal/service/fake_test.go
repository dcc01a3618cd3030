package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/model"
)

var (
	fixedNow  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	resetTime = time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	testRepo  = model.Repository{Owner: "octo", Name: "hello"}
)

// fakeAPI is an in-memory GitHub used by the fetcher and orchestrator tests.
type fakeAPI struct {
	mu sync.Mutex

	// remaining per resource; successive checks pop from the front and the
	// last value sticks.
	remaining map[string][]int
	quotaErr  error
	checks    map[string]int

	pages     []*model.ThreadPage
	searchErr map[int]error // keyed by page index
	cursors   []string

	lockErr map[int]error
	locked  []int
}

var _ ghclient.API = (*fakeAPI)(nil)

func (f *fakeAPI) RateLimit(_ context.Context, resource string) (model.QuotaStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checks == nil {
		f.checks = make(map[string]int)
	}
	n := f.checks[resource]
	f.checks[resource]++
	if f.quotaErr != nil {
		return model.QuotaStatus{}, f.quotaErr
	}
	seq, ok := f.remaining[resource]
	if !ok || len(seq) == 0 {
		return model.NewQuotaStatus(resource, 5000, 5000, resetTime), nil
	}
	if n >= len(seq) {
		n = len(seq) - 1
	}
	return model.NewQuotaStatus(resource, 5000, seq[n], resetTime), nil
}

func (f *fakeAPI) SearchThreads(_ context.Context, _ model.Repository, cursor string) (*model.ThreadPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.cursors)
	f.cursors = append(f.cursors, cursor)
	if err := f.searchErr[i]; err != nil {
		return nil, err
	}
	if i >= len(f.pages) {
		return nil, fmt.Errorf("unexpected page request %d", i)
	}
	return f.pages[i], nil
}

func (f *fakeAPI) LockThread(_ context.Context, _ model.Repository, number int, _ model.LockReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lockErr[number]; err != nil {
		return err
	}
	f.locked = append(f.locked, number)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakePublisher) Publish(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

func page(hasNext bool, cursor string, threads ...model.Thread) *model.ThreadPage {
	return &model.ThreadPage{Threads: threads, HasNextPage: hasNext, EndCursor: cursor}
}

func th(n int, kind model.ThreadKind, idleDays int) model.Thread {
	return model.Thread{
		Number:    n,
		Title:     fmt.Sprintf("thread %d", n),
		UpdatedAt: fixedNow.Add(-time.Duration(idleDays) * 24 * time.Hour),
		Kind:      kind,
	}
}
