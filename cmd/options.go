package cmd

// Options holds the command-line options for a sweep. Empty values and
// flags the user did not set leave the file and Action configuration alone.
type Options struct {
	Format      string
	Repo        string
	APIURL      string
	MetricsFile string
	Token       string

	Buffer int

	IssueInactiveDays string
	IssueLockReason   string
	PRInactiveDays    string
	PRLockReason      string

	DryRun    bool
	NoHistory bool
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI
}
