// Package urlutil provides repository reference parsing.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spiffcs/lockstale/internal/model"
)

// ParseRepository accepts "owner/repo" or a repository URL such as
// https://github.com/owner/repo(.git) and returns the repository it names.
func ParseRepository(s string) (model.Repository, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Repository{}, fmt.Errorf("repository not set (use owner/repo)")
	}

	path := s
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return model.Repository{}, fmt.Errorf("invalid repository URL %q: %w", s, err)
		}
		path = u.Path
	} else if strings.HasPrefix(s, "git@") {
		// git@github.com:owner/repo.git
		if i := strings.Index(s, ":"); i >= 0 {
			path = s[i+1:]
		}
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return model.Repository{}, fmt.Errorf("invalid repository %q (use owner/repo)", s)
	}
	// Plain owner/repo must be exactly two segments; URLs may carry more.
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "git@") && len(parts) != 2 {
		return model.Repository{}, fmt.Errorf("invalid repository %q (use owner/repo)", s)
	}

	return model.Repository{Owner: parts[0], Name: parts[1]}, nil
}
