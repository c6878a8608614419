package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
)

// ResolvedThreads returns the set of resolved review threads on a PR,
// keyed by the thread's root comment ID. Thread resolution state is only
// exposed by the GraphQL API, which requires a token; without one the
// result is nil and the report simply carries no resolution markers.
func (c *Client) ResolvedThreads(ctx context.Context, ref PRRef) (map[int64]bool, error) {
	gql := c.graphQLClient(ctx)
	if gql == nil {
		return nil, nil
	}

	resolved := make(map[int64]bool)
	var cursor *githubv4.String
	for {
		var q struct {
			Repository struct {
				PullRequest struct {
					ReviewThreads struct {
						Nodes []struct {
							IsResolved bool
							Comments   struct {
								Nodes []struct {
									DatabaseID int64
								}
							} `graphql:"comments(first: 1)"`
						}
						PageInfo struct {
							EndCursor   githubv4.String
							HasNextPage bool
						}
					} `graphql:"reviewThreads(first: 100, after: $cursor)"`
				} `graphql:"pullRequest(number: $number)"`
			} `graphql:"repository(owner: $owner, name: $name)"`
		}

		vars := map[string]any{
			"owner":  githubv4.String(ref.Owner),
			"name":   githubv4.String(ref.Repo),
			"number": githubv4.Int(ref.Number),
			"cursor": cursor,
		}
		if err := gql.Query(ctx, &q, vars); err != nil {
			return nil, fmt.Errorf("querying review threads: %w", err)
		}

		threads := q.Repository.PullRequest.ReviewThreads
		for _, node := range threads.Nodes {
			if !node.IsResolved || len(node.Comments.Nodes) == 0 {
				continue
			}
			resolved[node.Comments.Nodes[0].DatabaseID] = true
		}

		if !threads.PageInfo.HasNextPage {
			break
		}
		cursor = githubv4.NewString(threads.PageInfo.EndCursor)
	}
	return resolved, nil
}
