package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/lockstale/internal/format"
	"github.com/spiffcs/lockstale/internal/inactivity"
	"github.com/spiffcs/lockstale/internal/service"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	HTMLBase string
}

// Format writes a job-summary style report.
func (f *MarkdownFormatter) Format(res *service.Result, w io.Writer) error {
	heading := fmt.Sprintf("## lockstale: %s", res.Repository.FullName())
	if res.DryRun {
		heading += " (dry run)"
	}
	fmt.Fprintf(w, "%s\n\n", heading)

	fmt.Fprintf(w, "- **State:** %s\n", res.State)
	fmt.Fprintf(w, "- **Fetched:** %d threads in %d pages", res.Fetched, res.Pages)
	if res.FetchStoppedForQuota {
		fmt.Fprint(w, " (stopped at quota buffer)")
	}
	fmt.Fprintln(w)
	if res.FetchError != "" {
		fmt.Fprintf(w, "- **Search error:** %s\n", escapeMarkdown(res.FetchError))
	}
	if res.Unrecognized > 0 {
		fmt.Fprintf(w, "- **Unrecognized:** %d\n", res.Unrecognized)
	}
	q := res.QuotaBefore
	if res.QuotaAfter != nil {
		q = *res.QuotaAfter
	}
	fmt.Fprintf(w, "- **Quota:** %d/%d %s remaining, resets %s\n", q.Remaining, q.Limit, q.Resource, q.ResetHuman)
	fmt.Fprintf(w, "- **Duration:** %s\n", format.FormatElapsed(res.Duration))

	for _, cr := range res.Categories() {
		fmt.Fprintln(w)
		f.formatCategory(res, cr, w)
	}
	return nil
}

func (f *MarkdownFormatter) formatCategory(res *service.Result, cr inactivity.CategoryResult, w io.Writer) {
	fmt.Fprintf(w, "### %s (%d)\n\n", cr.Category.Display(), len(cr.Locked))
	fmt.Fprintf(w, "*Inactive for more than %d days, reason: %s*\n\n", cr.InactiveDays, cr.Reason.Display())

	if len(cr.Locked) == 0 {
		fmt.Fprintf(w, "Nothing locked (%d evaluated).\n", cr.Evaluated)
	} else {
		fmt.Fprintln(w, "| Number | Title | Idle |")
		fmt.Fprintln(w, "|-------:|-------|-----:|")
		for _, rec := range cr.Locked {
			fmt.Fprintf(w, "| [#%d](%s) | %s | %s |\n",
				rec.Number,
				ThreadURL(f.HTMLBase, res, rec.Number),
				escapeMarkdown(rec.Title),
				format.FormatDays(rec.InactiveDays))
		}
	}

	if len(cr.Failed) > 0 {
		nums := make([]string, len(cr.Failed))
		for i, n := range cr.Failed {
			nums[i] = fmt.Sprintf("#%d", n)
		}
		fmt.Fprintf(w, "\n**Failed:** %s\n", strings.Join(nums, ", "))
	}
	if cr.StoppedForQuota {
		fmt.Fprintf(w, "\n**Stopped at quota buffer**, %d not evaluated.\n", cr.Skipped)
	}
}

// escapeMarkdown keeps titles from breaking table cells.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("|", "\\|", "\n", " ", "\r", "")
	return r.Replace(s)
}
