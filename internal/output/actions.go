package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Outputs publishes named values to the invoking workflow. Inside GitHub
// Actions they are appended to the $GITHUB_OUTPUT file; elsewhere they are
// printed as key=value lines.
type Outputs struct {
	mu       sync.Mutex
	path     string
	fallback io.Writer
	values   map[string]string
	newDelim func() string
}

// NewOutputs returns an Outputs bound to $GITHUB_OUTPUT when it is set.
func NewOutputs(fallback io.Writer) *Outputs {
	return NewOutputsTo(os.Getenv("GITHUB_OUTPUT"), fallback)
}

// NewOutputsTo returns an Outputs that appends to path, or writes to
// fallback when path is empty. A nil fallback discards values.
func NewOutputsTo(path string, fallback io.Writer) *Outputs {
	if fallback == nil {
		fallback = io.Discard
	}
	return &Outputs{
		path:     path,
		fallback: fallback,
		values:   make(map[string]string),
		newDelim: func() string { return "ghadelimiter_" + uuid.NewString() },
	}
}

// Publish records value under key. Safe for concurrent use.
func (o *Outputs) Publish(key, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.values[key] = value

	if o.path == "" {
		_, err := fmt.Fprintf(o.fallback, "%s=%s\n", key, value)
		return err
	}

	delim := o.newDelim()
	if strings.Contains(key, delim) || strings.Contains(value, delim) {
		return fmt.Errorf("output %q contains its own delimiter", key)
	}

	f, err := os.OpenFile(o.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s<<%s\n%s\n%s\n", key, delim, value, delim); err != nil {
		return fmt.Errorf("failed to write output %q: %w", key, err)
	}
	return nil
}

// Value returns the last value published under key.
func (o *Outputs) Value(key string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the published keys in sorted order.
func (o *Outputs) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AppendStepSummary appends markdown to the job summary when running in
// GitHub Actions. It reports whether a summary file was written.
func AppendStepSummary(markdown string) (bool, error) {
	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return false, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("failed to open step summary: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, markdown); err != nil {
		return false, fmt.Errorf("failed to write step summary: %w", err)
	}
	return true, nil
}
