package ghclient

import (
	"embed"
	"fmt"

	"github.com/spiffcs/lockstale/internal/model"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// searchThreadsQuery is the GraphQL document used for every search page.
var searchThreadsQuery string

func init() {
	data, err := queryFiles.ReadFile("queries/search_threads.graphql")
	if err != nil {
		panic(fmt.Sprintf("failed to load search_threads.graphql: %v", err))
	}
	searchThreadsQuery = string(data)
}

// BuildSearchPredicate returns the fixed search predicate for a repository:
// threads that are closed and not locked.
func BuildSearchPredicate(repo model.Repository) string {
	return fmt.Sprintf("repo:%s is:closed is:unlocked", repo.FullName())
}
