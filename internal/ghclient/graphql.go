package ghclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/log"
	"github.com/spiffcs/lockstale/internal/model"
)

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GraphQLError is returned when a query produced errors and no data.
type GraphQLError struct {
	Errors []string
}

func (e *GraphQLError) Error() string {
	return "GraphQL query failed: " + strings.Join(e.Errors, "; ")
}

// searchResponse is the data section of the thread search query.
type searchResponse struct {
	Search struct {
		IssueCount int `json:"issueCount"`
		PageInfo   struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
		Nodes []searchNode `json:"nodes"`
	} `json:"search"`
}

type searchNode struct {
	TypeName  string     `json:"__typename"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt"`
	Locked    bool       `json:"locked"`
}

// SearchThreads fetches one page of closed, unlocked threads in repo.
// An empty cursor requests the first page.
func (c *Client) SearchThreads(ctx context.Context, repo model.Repository, cursor string) (*model.ThreadPage, error) {
	vars := map[string]any{
		"searchQuery": BuildSearchPredicate(repo),
		"first":       constants.SearchPageSize,
	}
	if cursor != "" {
		vars["cursor"] = cursor
	}

	data, err := c.executeGraphQL(ctx, searchThreadsQuery, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to search threads in %s: %w", repo.FullName(), err)
	}

	return parseSearchResponse(data)
}

// parseSearchResponse converts the search payload into a ThreadPage.
func parseSearchResponse(data json.RawMessage) (*model.ThreadPage, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	page := &model.ThreadPage{
		Threads:     make([]model.Thread, 0, len(resp.Search.Nodes)),
		HasNextPage: resp.Search.PageInfo.HasNextPage,
		EndCursor:   resp.Search.PageInfo.EndCursor,
	}
	for _, n := range resp.Search.Nodes {
		page.Threads = append(page.Threads, model.Thread{
			Number:    n.Number,
			Title:     n.Title,
			UpdatedAt: n.UpdatedAt,
			ClosedAt:  n.ClosedAt,
			Kind:      model.ThreadKind(n.TypeName),
			Locked:    n.Locked,
		})
	}

	// A page that claims more results but has no cursor would loop forever.
	if page.HasNextPage && page.EndCursor == "" {
		log.Debug("search page reported more results without a cursor")
		page.HasNextPage = false
	}

	log.Trace("search page parsed", "threads", len(page.Threads), "total", resp.Search.IssueCount, "hasNextPage", page.HasNextPage)
	return page, nil
}

// executeGraphQL posts a query through the REST client so that auth, base
// URL and rate limit tracking are shared with every other call.
func (c *Client) executeGraphQL(ctx context.Context, query string, vars map[string]any) (json.RawMessage, error) {
	req, err := c.client.NewRequest("POST", c.graphqlPath(), graphqlRequest{
		Query:     query,
		Variables: vars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}

	var gqlResp graphqlResponse
	if _, err := c.client.Do(ctx, req, &gqlResp); err != nil {
		return nil, fmt.Errorf("GraphQL request failed: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			log.Debug("GraphQL error", "message", e.Message, "type", e.Type)
			msgs = append(msgs, e.Message)
		}
		if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
			return nil, &GraphQLError{Errors: msgs}
		}
	}

	return gqlResp.Data, nil
}
