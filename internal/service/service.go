// Package service runs one sweep: quota admission, search, classification
// and the two concurrent inactivity passes.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spiffcs/lockstale/internal/classify"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/inactivity"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
	"github.com/spiffcs/lockstale/internal/quota"
	"golang.org/x/sync/errgroup"
)

// RunState is a step of a sweep.
type RunState string

const (
	StateIdle          RunState = "idle"
	StateCheckingQuota RunState = "checking-quota"
	StateAborted       RunState = "aborted"
	StateFetching      RunState = "fetching"
	StateClassifying   RunState = "classifying"
	StateProcessing    RunState = "processing"
	StateDone          RunState = "done"
	StateFailed        RunState = "failed"
)

// IsTerminal reports whether no further transitions follow s.
func (s RunState) IsTerminal() bool {
	return s == StateAborted || s == StateDone || s == StateFailed
}

// Config is everything one sweep needs, resolved up front.
type Config struct {
	Repository   model.Repository
	Buffer       int
	Issues       inactivity.Policy
	PullRequests inactivity.Policy
	DryRun       bool
}

// Result describes a finished sweep.
type Result struct {
	Repository model.Repository `json:"repository"`
	State      RunState         `json:"state"`
	DryRun     bool             `json:"dryRun"`
	StartedAt  time.Time        `json:"startedAt"`
	Duration   time.Duration    `json:"duration"`

	QuotaBefore model.QuotaStatus  `json:"quotaBefore"`
	QuotaAfter  *model.QuotaStatus `json:"quotaAfter,omitempty"`

	Fetched              int    `json:"fetched"`
	Pages                int    `json:"pages"`
	FetchStoppedForQuota bool   `json:"fetchStoppedForQuota"`
	FetchError           string `json:"fetchError,omitempty"`
	Unrecognized         int    `json:"unrecognized"`

	Issues       inactivity.CategoryResult `json:"issues"`
	PullRequests inactivity.CategoryResult `json:"pullRequests"`
}

// Categories returns both category results in reporting order.
func (r *Result) Categories() []inactivity.CategoryResult {
	return []inactivity.CategoryResult{r.Issues, r.PullRequests}
}

// TotalLocked returns the number of threads locked across both categories.
func (r *Result) TotalLocked() int {
	return len(r.Issues.Locked) + len(r.PullRequests.Locked)
}

// TotalFailed returns the number of failed lock requests.
func (r *Result) TotalFailed() int {
	return len(r.Issues.Failed) + len(r.PullRequests.Failed)
}

// Hooks receive progress while a sweep runs. Any field may be nil.
type Hooks struct {
	OnState   func(RunState)
	OnFetch   ProgressFunc
	OnProcess func(c model.Category, completed, total int)
}

// Service runs sweeps against one GitHub API.
type Service struct {
	api       ghclient.API
	guard     *quota.Guard
	publisher inactivity.Publisher
	hooks     Hooks
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where manifests are published.
func WithPublisher(p inactivity.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithHooks registers progress callbacks.
func WithHooks(h Hooks) Option {
	return func(s *Service) {
		s.hooks = h
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service.
func New(api ghclient.API, opts ...Option) *Service {
	s := &Service{
		api:   api,
		guard: quota.NewGuard(api),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) setState(res *Result, state RunState) {
	res.State = state
	log.Debug("run state", "state", string(state))
	if s.hooks.OnState != nil {
		s.hooks.OnState(state)
	}
}

// Run performs one sweep. The returned Result is never nil; on error its
// State is StateFailed and it holds whatever was done before the failure.
func (s *Service) Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg.Issues.Category = model.CategoryIssues
	cfg.PullRequests.Category = model.CategoryPullRequests

	res := &Result{
		Repository:   cfg.Repository,
		State:        StateIdle,
		DryRun:       cfg.DryRun,
		StartedAt:    s.now(),
		Issues:       emptyCategory(cfg.Issues),
		PullRequests: emptyCategory(cfg.PullRequests),
	}
	defer func() {
		res.Duration = s.now().Sub(res.StartedAt)
	}()

	if err := cfg.Repository.Validate(); err != nil {
		return s.fail(res, err)
	}

	s.setState(res, StateCheckingQuota)
	var exhausted bool
	res.QuotaBefore, exhausted = s.guard.Exhausted(ctx, constants.ResourceCore, cfg.Buffer)
	if exhausted {
		log.Warn(fmt.Sprintf("Rate limit buffer reached, skipping run. Quota resets at %s", res.QuotaBefore.ResetHuman),
			"remaining", res.QuotaBefore.Remaining, "buffer", cfg.Buffer)
		if err := s.publishEmpty(); err != nil {
			return s.fail(res, err)
		}
		s.setState(res, StateAborted)
		return res, nil
	}

	s.setState(res, StateFetching)
	fetched := NewFetcher(s.api, s.guard, cfg.Buffer, s.hooks.OnFetch).FetchThreads(ctx, cfg.Repository)
	res.Fetched = len(fetched.Threads)
	res.Pages = fetched.Pages
	res.FetchStoppedForQuota = fetched.StoppedForQuota
	if fetched.Err != nil {
		res.FetchError = fetched.Err.Error()
	}
	if err := ctx.Err(); err != nil {
		return s.fail(res, err)
	}

	s.setState(res, StateClassifying)
	part := classify.Split(fetched.Threads)
	res.Unrecognized = len(part.Unrecognized)
	for _, t := range part.Unrecognized {
		log.Warn("skipping thread of unrecognized kind", "number", t.Number, "kind", string(t.Kind))
	}
	log.Info("classified threads", "total", part.Total(), "issues", len(part.Issues), "pullRequests", len(part.PullRequests))

	s.setState(res, StateProcessing)
	if err := s.processBoth(ctx, cfg, part, res); err != nil {
		return s.fail(res, err)
	}

	after := s.guard.Check(ctx, constants.ResourceCore)
	res.QuotaAfter = &after

	s.setState(res, StateDone)
	return res, nil
}

// processBoth runs the issue and pull request passes concurrently. They
// write to different fields of res and publish under different keys.
func (s *Service) processBoth(ctx context.Context, cfg Config, part classify.Partition, res *Result) error {
	locker := inactivity.NewLocker(s.api, cfg.Repository)
	g, gctx := errgroup.WithContext(ctx)

	run := func(policy inactivity.Policy, dst *inactivity.CategoryResult) {
		threads := part.ForCategory(policy.Category)
		g.Go(func() error {
			p := inactivity.NewProcessor(locker,
				inactivity.WithQuotaGuard(s.guard, cfg.Buffer),
				inactivity.WithPublisher(s.publisher),
				inactivity.WithClock(s.now),
				inactivity.WithDryRun(cfg.DryRun),
				inactivity.WithProgress(func(completed, total int) {
					if s.hooks.OnProcess != nil {
						s.hooks.OnProcess(policy.Category, completed, total)
					}
				}),
			)
			out, err := p.Process(gctx, threads, policy)
			*dst = out
			if err != nil {
				return fmt.Errorf("%s: %w", policy.Category, err)
			}
			log.Info(fmt.Sprintf("%s processed", policy.Category.Display()),
				"evaluated", out.Evaluated, "locked", len(out.Locked), "failed", len(out.Failed))
			return nil
		})
	}

	run(cfg.Issues, &res.Issues)
	run(cfg.PullRequests, &res.PullRequests)

	return g.Wait()
}

func (s *Service) publishEmpty() error {
	if s.publisher == nil {
		return nil
	}
	empty, err := inactivity.EncodeManifest(nil)
	if err != nil {
		return err
	}
	for _, c := range model.AllCategories {
		if err := s.publisher.Publish(c.OutputKey(), empty); err != nil {
			return fmt.Errorf("failed to publish %s: %w", c.OutputKey(), err)
		}
	}
	return nil
}

func (s *Service) fail(res *Result, err error) (*Result, error) {
	s.setState(res, StateFailed)
	return res, fmt.Errorf("run failed in %s: %w", res.Repository.FullName(), err)
}

func emptyCategory(p inactivity.Policy) inactivity.CategoryResult {
	return inactivity.CategoryResult{
		Category:     p.Category,
		InactiveDays: p.InactiveDays,
		Reason:       p.Reason,
		Locked:       []model.LockRecord{},
	}
}
