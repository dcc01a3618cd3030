package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
	"github.com/spiffcs/lockstale/internal/quota"
)

func TestFetchThreadsFollowsCursor(t *testing.T) {
	api := &fakeAPI{pages: []*model.ThreadPage{
		page(true, "c1", th(1, model.KindIssue, 1), th(2, model.KindPullRequest, 1)),
		page(true, "c2", th(3, model.KindIssue, 1)),
		page(false, "", th(4, model.KindIssue, 1)),
	}}

	var progress [][2]int
	f := NewFetcher(api, quota.NewGuard(api), 100, func(threads, pages int) {
		progress = append(progress, [2]int{threads, pages})
	})
	res := f.FetchThreads(context.Background(), testRepo)

	if len(res.Threads) != 4 || res.Pages != 3 {
		t.Fatalf("got %d threads over %d pages, want 4 over 3", len(res.Threads), res.Pages)
	}
	if res.StoppedForQuota || res.Err != nil {
		t.Errorf("unexpected early stop: quota=%v err=%v", res.StoppedForQuota, res.Err)
	}
	wantCursors := []string{"", "c1", "c2"}
	for i, c := range wantCursors {
		if api.cursors[i] != c {
			t.Errorf("cursor[%d] = %q, want %q", i, api.cursors[i], c)
		}
	}
	if api.checks["graphql"] != 3 {
		t.Errorf("expected a graphql quota check per page, got %d", api.checks["graphql"])
	}
	if len(progress) != 3 || progress[2] != [2]int{4, 3} {
		t.Errorf("progress = %v", progress)
	}
}

func TestFetchThreadsStopsAtBuffer(t *testing.T) {
	var buf bytes.Buffer
	log.Initialize(log.LevelQuiet, &buf)
	t.Cleanup(func() { log.Initialize(log.LevelQuiet, &bytes.Buffer{}) })

	api := &fakeAPI{
		remaining: map[string][]int{"graphql": {50}},
		pages: []*model.ThreadPage{
			page(true, "c1", th(1, model.KindIssue, 1)),
			page(false, "", th(2, model.KindIssue, 1)),
		},
	}

	res := NewFetcher(api, quota.NewGuard(api), 100, nil).FetchThreads(context.Background(), testRepo)

	if len(api.cursors) != 1 {
		t.Errorf("expected one page request, got %d", len(api.cursors))
	}
	if len(res.Threads) != 1 || !res.StoppedForQuota {
		t.Errorf("threads=%d stopped=%v, want 1 and true", len(res.Threads), res.StoppedForQuota)
	}
	if res.Err != nil {
		t.Errorf("early stop is not an error, got %v", res.Err)
	}
	if !strings.Contains(buf.String(), "Sat, 01 Jun 2024 13:00:00 UTC") {
		t.Errorf("warning should name the reset time, got:\n%s", buf.String())
	}
}

func TestFetchThreadsKeepsPartialOnError(t *testing.T) {
	log.Initialize(log.LevelQuiet, &bytes.Buffer{})

	api := &fakeAPI{
		pages: []*model.ThreadPage{
			page(true, "c1", th(1, model.KindIssue, 1), th(2, model.KindIssue, 1)),
		},
		searchErr: map[int]error{1: ghclient.ErrRateLimited},
	}

	res := NewFetcher(api, quota.NewGuard(api), 100, nil).FetchThreads(context.Background(), testRepo)

	if len(res.Threads) != 2 {
		t.Errorf("expected the first page to survive, got %d threads", len(res.Threads))
	}
	if !errors.Is(res.Err, ghclient.ErrRateLimited) || !res.RateLimited {
		t.Errorf("Err=%v RateLimited=%v", res.Err, res.RateLimited)
	}
}

func TestFetchThreadsFirstPageError(t *testing.T) {
	log.Initialize(log.LevelQuiet, &bytes.Buffer{})

	api := &fakeAPI{searchErr: map[int]error{0: errors.New("bad gateway")}}
	res := NewFetcher(api, quota.NewGuard(api), 100, nil).FetchThreads(context.Background(), testRepo)

	if res.Threads == nil || len(res.Threads) != 0 {
		t.Errorf("expected empty non-nil threads, got %v", res.Threads)
	}
	if res.Err == nil || res.RateLimited {
		t.Errorf("Err=%v RateLimited=%v", res.Err, res.RateLimited)
	}
}
