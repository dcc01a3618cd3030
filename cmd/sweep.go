package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/lockstale/config"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/ghclient"
	"github.com/spiffcs/lockstale/internal/history"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/metrics"
	"github.com/spiffcs/lockstale/internal/model"
	"github.com/spiffcs/lockstale/internal/output"
	"github.com/spiffcs/lockstale/internal/service"
	"github.com/spiffcs/lockstale/internal/tui"
)

// sweepRuntime bundles TUI-related state that's threaded through a sweep.
type sweepRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error

	// last TUI update per category, in Unix nanoseconds
	lastUpdate map[model.Category]*atomic.Int64

	// tasks running when the state last changed
	active []tui.TaskID
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *sweepRuntime) startTUI(repo string, dryRun bool) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, tui.WithRepository(repo), tui.WithDryRun(dryRun))
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *sweepRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	if rt.tuiDone != nil {
		if err := <-rt.tuiDone; err != nil {
			log.Warn("progress display failed", "error", err)
		}
	}
	rt.events = nil
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *sweepRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	if rt.events == nil {
		return
	}
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// hooks translates service progress into TUI events, or progress log lines
// when the TUI is off.
func (rt *sweepRuntime) hooks() service.Hooks {
	return service.Hooks{
		OnState: rt.onState,
		OnFetch: func(threads, pages int) {
			if rt.useTUI {
				rt.sendEvent(tui.TaskFetch, tui.StatusRunning,
					tui.WithMessage(fmt.Sprintf("%d threads, %d pages", threads, pages)))
				return
			}
			if log.InActions() {
				log.Debug("fetched page", "threads", threads, "pages", pages)
				return
			}
			log.Progress("Searching closed threads: %d found (%d pages)...", threads, pages)
		},
		OnProcess: rt.onProcess,
	}
}

// onState is only called from the goroutine running the sweep. Terminal
// states leave the active tasks for finish to report.
func (rt *sweepRuntime) onState(state service.RunState) {
	if state.IsTerminal() {
		return
	}

	var next []tui.TaskID
	switch state {
	case service.StateCheckingQuota:
		next = []tui.TaskID{tui.TaskQuota}
	case service.StateFetching:
		next = []tui.TaskID{tui.TaskFetch}
	case service.StateClassifying:
		if !rt.useTUI {
			log.ProgressDone()
		}
		next = []tui.TaskID{tui.TaskClassify}
	case service.StateProcessing:
		next = []tui.TaskID{tui.TaskIssues, tui.TaskPullRequests}
	default:
		return
	}

	for _, task := range rt.active {
		rt.sendEvent(task, tui.StatusComplete)
	}
	for _, task := range next {
		rt.sendEvent(task, tui.StatusRunning)
	}
	rt.active = next
}

func (rt *sweepRuntime) onProcess(c model.Category, completed, total int) {
	if !rt.useTUI || total == 0 {
		return
	}
	last, ok := rt.lastUpdate[c]
	if !ok {
		return
	}

	// Throttle TUI updates for smooth progress without flooding the channel
	now := time.Now().UnixNano()
	prev := last.Load()
	if now-prev < int64(constants.TUIUpdateInterval) && completed != total {
		return
	}
	if !last.CompareAndSwap(prev, now) {
		return
	}

	rt.sendEvent(taskForCategory(c), tui.StatusRunning,
		tui.WithProgress(float64(completed)/float64(total)),
		tui.WithMessage(fmt.Sprintf("%d/%d", completed, total)))
}

// finish reports the final state of every task from the result.
func (rt *sweepRuntime) finish(res *service.Result, buffer int, runErr error) {
	if rt.events == nil {
		return
	}

	switch res.State {
	case service.StateAborted:
		rt.sendEvent(tui.TaskQuota, tui.StatusError, tui.WithMessage("buffer reached"))
		for _, task := range []tui.TaskID{tui.TaskFetch, tui.TaskClassify, tui.TaskIssues, tui.TaskPullRequests} {
			rt.sendEvent(task, tui.StatusSkipped)
		}
		tui.SendEvent(rt.events, tui.RateLimitEvent{Quota: res.QuotaBefore, Buffer: buffer})
		return
	case service.StateFailed:
		for _, task := range rt.active {
			rt.sendEvent(task, tui.StatusError, tui.WithError(runErr))
		}
		return
	}

	rt.sendEvent(tui.TaskFetch, tui.StatusComplete, tui.WithCount(res.Fetched))
	rt.sendEvent(tui.TaskClassify, tui.StatusComplete, tui.WithMessage(fmt.Sprintf("%d issues, %d pull requests",
		res.Issues.Evaluated+res.Issues.Skipped, res.PullRequests.Evaluated+res.PullRequests.Skipped)))
	for _, cr := range res.Categories() {
		msg := fmt.Sprintf("locked %d of %d", len(cr.Locked), cr.Evaluated)
		if len(cr.Failed) > 0 {
			msg += fmt.Sprintf(", %d failed", len(cr.Failed))
		}
		rt.sendEvent(taskForCategory(cr.Category), tui.StatusComplete, tui.WithMessage(msg), tui.WithProgress(1))
	}

	if res.FetchStoppedForQuota || res.Issues.StoppedForQuota || res.PullRequests.StoppedForQuota {
		q := res.QuotaBefore
		if res.QuotaAfter != nil {
			q = *res.QuotaAfter
		}
		tui.SendEvent(rt.events, tui.RateLimitEvent{Quota: q, Buffer: buffer})
	}
}

func taskForCategory(c model.Category) tui.TaskID {
	if c == model.CategoryPullRequests {
		return tui.TaskPullRequests
	}
	return tui.TaskIssues
}

// addSweepFlags adds the sweep flags to a command.
func addSweepFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.Repo, "repo", "", "Repository to sweep as owner/repo or URL (default: $GITHUB_REPOSITORY)")
	cmd.Flags().IntVar(&opts.Buffer, "buffer", constants.DefaultRateLimitBuffer, "API requests to leave unused for other automation")
	cmd.Flags().StringVar(&opts.IssueInactiveDays, "issue-inactive-days", "", "Days a closed issue must be idle before locking (e.g. 90, 12w, 3mo)")
	cmd.Flags().StringVar(&opts.IssueLockReason, "issue-lock-reason", "", `Lock reason for issues (off-topic, "too heated", resolved, spam, or "" for none)`)
	cmd.Flags().StringVar(&opts.PRInactiveDays, "pr-inactive-days", "", "Days a closed pull request must be idle before locking")
	cmd.Flags().StringVar(&opts.PRLockReason, "pr-lock-reason", "", "Lock reason for pull requests")
	cmd.Flags().StringVar(&opts.APIURL, "api-url", "", "GitHub REST API URL (default: https://api.github.com/)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Summary format (table, json, markdown)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&opts.Token, "token", "", "GitHub token (default: $GITHUB_TOKEN)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would be locked without locking anything")
	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record this run in the history file")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
}

func runSweep(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := setupRuntime(opts)

	cfg, settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(settings.Format)
	if err != nil {
		return err
	}

	token := opts.Token
	if token == "" {
		token = cfg.GetGitHubToken()
	}
	if token == "" {
		return fmt.Errorf("GitHub token not configured. Set the GITHUB_TOKEN environment variable or the github-token input")
	}

	client, err := ghclient.NewClient(ctx, token, ghclient.WithBaseURL(settings.APIURL))
	if err != nil {
		return err
	}

	// Without $GITHUB_OUTPUT the manifests are printed once the progress
	// display has finished, so they never interleave with it.
	outputs := output.NewOutputs(nil)

	svc := service.New(client,
		service.WithPublisher(outputs),
		service.WithHooks(rt.hooks()),
	)

	log.Info("sweeping repository", "repository", settings.Repository.FullName(),
		"issueDays", settings.Issues.InactiveDays, "prDays", settings.PullRequests.InactiveDays,
		"buffer", settings.Buffer, "dryRun", opts.DryRun)

	rt.startTUI(settings.Repository.FullName(), opts.DryRun)
	res, runErr := svc.Run(ctx, service.Config{
		Repository:   settings.Repository,
		Buffer:       settings.Buffer,
		Issues:       settings.Issues,
		PullRequests: settings.PullRequests,
		DryRun:       opts.DryRun,
	})
	rt.finish(res, settings.Buffer, runErr)
	rt.close()

	stdout := cmd.OutOrStdout()
	if format != output.FormatJSON && os.Getenv("GITHUB_OUTPUT") == "" {
		printManifests(stdout, outputs)
	}
	if err := renderSummary(res, format, settings, stdout); err != nil {
		log.Warn("failed to render summary", "error", err)
	}

	if settings.History && !opts.NoHistory {
		recordHistory(res, runErr)
	}
	if settings.MetricsFile != "" {
		writeMetrics(res, client.Observed(), settings.MetricsFile)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Warn("run cancelled")
		}
		log.Error("run failed", "error", runErr)
		return runErr
	}
	return nil
}

// setupRuntime initializes logging and decides whether the TUI runs.
func setupRuntime(opts *Options) *sweepRuntime {
	useTUI := shouldUseTUI(opts)

	switch {
	case log.InActions():
		// The runner hides ::debug:: lines unless step debugging is enabled
		log.InitializeActions(max(opts.Verbosity, log.LevelDebug), os.Stdout)
	case useTUI:
		// Suppress logs during TUI to avoid interleaving with display
		log.Initialize(opts.Verbosity, io.Discard)
	default:
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	rt := &sweepRuntime{
		useTUI: useTUI,
		lastUpdate: map[model.Category]*atomic.Int64{
			model.CategoryIssues:       new(atomic.Int64),
			model.CategoryPullRequests: new(atomic.Int64),
		},
	}
	return rt
}

// loadSettings layers config files, Action inputs and flags, in that order.
func loadSettings(cmd *cobra.Command, opts *Options) (*config.Config, *config.Settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ApplyActionInputs(os.LookupEnv); err != nil {
		return nil, nil, err
	}

	applyFlags(cmd, cfg, opts)

	settings, err := cfg.Resolve()
	if err != nil {
		return nil, nil, err
	}
	return cfg, settings, nil
}

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *Options) {
	flags := cmd.Flags()

	if flags.Changed("repo") {
		cfg.Repository = opts.Repo
	}
	if flags.Changed("buffer") {
		buffer := opts.Buffer
		cfg.RateLimitBuffer = &buffer
	}
	if flags.Changed("api-url") {
		cfg.APIURL = opts.APIURL
	}
	if flags.Changed("output") {
		cfg.Format = opts.Format
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.MetricsFile
	}
	if flags.Changed("issue-inactive-days") {
		cfg.SetInactiveDays(model.CategoryIssues, opts.IssueInactiveDays)
	}
	if flags.Changed("pr-inactive-days") {
		cfg.SetInactiveDays(model.CategoryPullRequests, opts.PRInactiveDays)
	}
	if flags.Changed("issue-lock-reason") {
		cfg.SetLockReason(model.CategoryIssues, opts.IssueLockReason)
	}
	if flags.Changed("pr-lock-reason") {
		cfg.SetLockReason(model.CategoryPullRequests, opts.PRLockReason)
	}
}

// renderSummary writes the summary in format and, inside Actions, appends
// the markdown rendering to the job summary.
func renderSummary(res *service.Result, format output.Format, settings *config.Settings, w io.Writer) error {
	htmlBase := output.HTMLBaseForAPI(settings.APIURL)

	if err := output.NewFormatter(format, htmlBase).Format(res, w); err != nil {
		return err
	}

	var md strings.Builder
	if err := output.NewFormatter(output.FormatMarkdown, htmlBase).Format(res, &md); err != nil {
		return err
	}
	written, err := output.AppendStepSummary(md.String())
	if err != nil {
		return err
	}
	if written {
		log.Debug("appended job summary")
	}
	return nil
}

func recordHistory(res *service.Result, runErr error) {
	store, err := history.NewStore()
	if err != nil {
		log.Warn("could not open history", "error", err)
		return
	}
	if err := store.Append(history.FromResult(res, runErr)); err != nil {
		log.Warn("could not record run history, reset it with 'lockstale history clear'", "error", err)
	}
}

// printManifests writes each published manifest as a key=value line.
func printManifests(w io.Writer, outputs *output.Outputs) {
	for _, key := range outputs.Keys() {
		value, _ := outputs.Value(key)
		fmt.Fprintf(w, "%s=%s\n", key, value)
	}
}

func writeMetrics(res *service.Result, observed *ghclient.RateLimitState, path string) {
	rec := metrics.NewRecorder(version)
	rec.Observe(res)
	for _, resource := range []string{constants.ResourceCore, constants.ResourceSearch, constants.ResourceGraphQL} {
		if q, ok := observed.Last(resource); ok {
			rec.ObserveQuota(q)
		}
	}
	if err := rec.WriteTextfile(path); err != nil {
		log.Warn("could not write metrics", "error", err)
		return
	}
	log.Debug("wrote metrics", "path", path)
}
