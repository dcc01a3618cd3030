// Package output renders sweep results and publishes workflow outputs.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/lockstale/internal/service"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// AllFormats lists the supported formats.
var AllFormats = []Format{FormatTable, FormatJSON, FormatMarkdown}

// ParseFormat validates a format name. The empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid output format %q (must be table, json or markdown)", s)
	}
}

// Formatter renders the result of one sweep.
type Formatter interface {
	Format(res *service.Result, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format. htmlBase is the
// web root thread links are built from, e.g. https://github.com/.
func NewFormatter(format Format, htmlBase string) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{HTMLBase: htmlBase}
	default:
		return &TableFormatter{HTMLBase: htmlBase}
	}
}

// ThreadURL returns the web URL of a thread. GitHub redirects /issues/N to
// /pull/N for pull requests, so one form serves both.
func ThreadURL(htmlBase string, res *service.Result, number int) string {
	if htmlBase == "" {
		htmlBase = "https://github.com/"
	}
	if !strings.HasSuffix(htmlBase, "/") {
		htmlBase += "/"
	}
	return fmt.Sprintf("%s%s/issues/%d", htmlBase, res.Repository.FullName(), number)
}

// HTMLBaseForAPI derives the web root from a REST API URL: api.github.com
// maps to github.com and GHES's /api/v3/ suffix is dropped.
func HTMLBaseForAPI(apiURL string) string {
	if apiURL == "" || strings.Contains(apiURL, "://api.github.com") {
		return "https://github.com/"
	}
	base := strings.TrimSuffix(apiURL, "/")
	base = strings.TrimSuffix(base, "/api/v3")
	return base + "/"
}
