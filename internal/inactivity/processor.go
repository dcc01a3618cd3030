package inactivity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
)

// QuotaChecker reports whether a rate limit resource has dropped to buffer.
type QuotaChecker interface {
	Exhausted(ctx context.Context, resource string, buffer int) (model.QuotaStatus, bool)
}

// Publisher exposes a named output to whatever invoked the sweep.
type Publisher interface {
	Publish(key, value string) error
}

// Policy is the per-category configuration a Processor applies.
type Policy struct {
	Category     model.Category
	InactiveDays int
	Reason       model.LockReason
}

// CategoryResult summarises one category's pass.
type CategoryResult struct {
	Category     model.Category     `json:"category"`
	InactiveDays int                `json:"inactiveDays"`
	Reason       model.LockReason   `json:"lockReason"`
	Evaluated    int                `json:"evaluated"`
	Locked       []model.LockRecord `json:"locked"`
	Failed       []int              `json:"failed,omitempty"`

	// Skipped counts threads never evaluated because the quota buffer was
	// reached part way through.
	Skipped         int  `json:"skipped"`
	StoppedForQuota bool `json:"stoppedForQuota"`
}

// Processor evaluates the threads of one category and locks the stale ones.
type Processor struct {
	locker     ThreadLocker
	guard      QuotaChecker
	buffer     int
	publisher  Publisher
	now        func() time.Time
	dryRun     bool
	onProgress func(completed, total int)
}

// Option configures a Processor.
type Option func(*Processor)

// WithQuotaGuard makes the processor check the core quota before each lock
// and stop once remaining is at or below buffer.
func WithQuotaGuard(g QuotaChecker, buffer int) Option {
	return func(p *Processor) {
		p.guard = g
		p.buffer = buffer
	}
}

// WithPublisher sets where the manifest is published.
func WithPublisher(pub Publisher) Option {
	return func(p *Processor) {
		p.publisher = pub
	}
}

// WithClock overrides the time source used for inactivity.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithDryRun evaluates threads without sending lock requests.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) {
		p.dryRun = dryRun
	}
}

// WithProgress registers a callback invoked after each thread.
func WithProgress(fn func(completed, total int)) Option {
	return func(p *Processor) {
		p.onProgress = fn
	}
}

// NewProcessor creates a Processor that locks through locker.
func NewProcessor(locker ThreadLocker, opts ...Option) *Processor {
	p := &Processor{
		locker: locker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process locks every thread idle for strictly more than policy.InactiveDays.
// Threads are visited in order and a failed lock does not stop the loop.
// The manifest is published under the category's output key even when
// nothing was locked. The returned error is non-nil only when ctx is done or
// the manifest could not be published.
func (p *Processor) Process(ctx context.Context, threads []model.Thread, policy Policy) (CategoryResult, error) {
	res := CategoryResult{
		Category:     policy.Category,
		InactiveDays: policy.InactiveDays,
		Reason:       policy.Reason,
		Locked:       []model.LockRecord{},
	}

	now := p.now()
	threshold := float64(policy.InactiveDays)
	noun := policy.Category.Noun()

	for i, t := range threads {
		if err := ctx.Err(); err != nil {
			res.Skipped = len(threads) - i
			return res, err
		}

		res.Evaluated++
		days := DaysSince(now, t.UpdatedAt)

		if days > threshold {
			if p.quotaReached(ctx, policy.Category) {
				res.Evaluated--
				res.Skipped = len(threads) - i
				res.StoppedForQuota = true
				break
			}
			if p.lock(ctx, t, days, policy, noun) {
				res.Locked = append(res.Locked, model.LockRecord{
					Number:       t.Number,
					Title:        t.Title,
					InactiveDays: days,
				})
			} else {
				res.Failed = append(res.Failed, t.Number)
			}
		} else {
			log.Debug(fmt.Sprintf("%s #%d has %s days of inactivity", noun, t.Number, FormatDays(days)))
		}

		p.reportProgress(i+1, len(threads))
	}

	if err := p.publish(policy.Category, res.Locked); err != nil {
		return res, err
	}
	return res, nil
}

// lock reports whether the thread ended up locked (or would have, in a dry run).
func (p *Processor) lock(ctx context.Context, t model.Thread, days float64, policy Policy, noun string) bool {
	if p.dryRun {
		log.Info(fmt.Sprintf("%s #%d would be locked after %s days of inactivity", noun, t.Number, FormatDays(days)), "dryRun", true)
		return true
	}
	if err := p.locker.Lock(ctx, t.Number, policy.Reason); err != nil {
		return false
	}
	log.Info(fmt.Sprintf("%s #%d locked after %s days of inactivity", noun, t.Number, FormatDays(days)), "reason", policy.Reason.Display())
	return true
}

func (p *Processor) quotaReached(ctx context.Context, c model.Category) bool {
	if p.guard == nil || p.dryRun {
		return false
	}
	q, exhausted := p.guard.Exhausted(ctx, constants.ResourceCore, p.buffer)
	if !exhausted {
		return false
	}
	log.Warn(fmt.Sprintf("Rate limit buffer reached, no further %s will be locked until %s", c.Display(), q.ResetHuman),
		"remaining", q.Remaining, "buffer", p.buffer)
	return true
}

func (p *Processor) publish(c model.Category, locked []model.LockRecord) error {
	if p.publisher == nil {
		return nil
	}
	manifest, err := EncodeManifest(locked)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(c.OutputKey(), manifest); err != nil {
		return fmt.Errorf("failed to publish %s: %w", c.OutputKey(), err)
	}
	return nil
}

func (p *Processor) reportProgress(completed, total int) {
	if p.onProgress != nil {
		p.onProgress(completed, total)
	}
}

// EncodeManifest serialises lock records as a JSON array. A nil or empty
// slice encodes as [].
func EncodeManifest(records []model.LockRecord) (string, error) {
	if records == nil {
		records = []model.LockRecord{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	return string(b), nil
}

// DaysSince returns the fractional number of days between then and now.
func DaysSince(now, then time.Time) float64 {
	return float64(now.Sub(then).Milliseconds()) / float64(constants.Day.Milliseconds())
}

// FormatDays prints a day count in its shortest form: 1, 1.5, 30.25.
func FormatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
