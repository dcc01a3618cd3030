package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spiffcs/lockstale/internal/format"
	"github.com/spiffcs/lockstale/internal/inactivity"
	"github.com/spiffcs/lockstale/internal/service"
	"golang.org/x/term"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	HTMLBase string
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	// Only use hyperlinks if stdout is a terminal
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Format prints a run header followed by one table per category.
func (f *TableFormatter) Format(res *service.Result, w io.Writer) error {
	f.printHeader(res, w)

	for _, cr := range res.Categories() {
		fmt.Fprintln(w)
		f.printCategory(res, cr, w)
	}

	fmt.Fprintln(w)
	printFooter(res, w)
	return nil
}

func (f *TableFormatter) printHeader(res *service.Result, w io.Writer) {
	title := fmt.Sprintf("%s  %s", color.New(color.Bold).Sprint(res.Repository.FullName()), colorState(res.State))
	if res.DryRun {
		title += "  " + color.YellowString("(dry run)")
	}
	fmt.Fprintln(w, title)

	fmt.Fprintf(w, "Fetched %d threads in %d pages", res.Fetched, res.Pages)
	if res.FetchStoppedForQuota {
		fmt.Fprint(w, color.YellowString(" (stopped at quota buffer)"))
	}
	if res.FetchError != "" {
		fmt.Fprint(w, color.RedString(" (search failed: %s)", res.FetchError))
	}
	fmt.Fprintln(w)

	if res.Unrecognized > 0 {
		fmt.Fprintf(w, "Skipped %d threads of unrecognized kind\n", res.Unrecognized)
	}
}

func (f *TableFormatter) printCategory(res *service.Result, cr inactivity.CategoryResult, w io.Writer) {
	const (
		colNumber = 7
		colTitle  = 56
		colIdle   = 6
	)

	verb := "locked"
	if res.DryRun {
		verb = "would lock"
	}
	fmt.Fprintf(w, "%s  %s\n",
		color.New(color.Bold).Sprint(cr.Category.Display()),
		color.HiBlackString("inactive > %dd, reason: %s", cr.InactiveDays, cr.Reason.Display()))

	if len(cr.Locked) == 0 {
		fmt.Fprintf(w, "  Nothing %s (%d evaluated)\n", verb, cr.Evaluated)
	} else {
		fmt.Fprintf(w, "  %-*s  %-*s  %*s\n", colNumber, "Number", colTitle, "Title", colIdle, "Idle")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", colNumber+colTitle+colIdle+4))

		for _, rec := range cr.Locked {
			title, width := format.TruncateToWidth(rec.Title, colTitle)
			linked := hyperlink(title, ThreadURL(f.HTMLBase, res, rec.Number))
			fmt.Fprintf(w, "  %-*s  %s  %*s\n",
				colNumber, fmt.Sprintf("#%d", rec.Number),
				format.PadRight(linked, width, colTitle),
				colIdle, format.FormatDays(rec.InactiveDays))
		}
		fmt.Fprintf(w, "  %s %d of %d evaluated\n", verb, len(cr.Locked), cr.Evaluated)
	}

	if len(cr.Failed) > 0 {
		nums := make([]string, len(cr.Failed))
		for i, n := range cr.Failed {
			nums[i] = fmt.Sprintf("#%d", n)
		}
		fmt.Fprintf(w, "  %s %s\n", color.RedString("failed:"), strings.Join(nums, ", "))
	}
	if cr.StoppedForQuota {
		fmt.Fprintf(w, "  %s\n", color.YellowString("stopped at quota buffer, %d not evaluated", cr.Skipped))
	}
}

func printFooter(res *service.Result, w io.Writer) {
	q := res.QuotaBefore
	if res.QuotaAfter != nil {
		q = *res.QuotaAfter
	}
	fmt.Fprintf(w, "Quota: %s %d/%d remaining, resets %s\n", q.Resource, q.Remaining, q.Limit, q.ResetHuman)
	fmt.Fprintf(w, "Done in %s\n", format.FormatElapsed(res.Duration))
}

func colorState(s service.RunState) string {
	switch s {
	case service.StateDone:
		return color.GreenString(string(s))
	case service.StateAborted:
		return color.YellowString(string(s))
	case service.StateFailed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}
