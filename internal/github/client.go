package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// lineNotFound is returned by FileLine when the requested line number is
// outside the fetched file. It is a sentinel value, not an error, so one
// bad comment cannot abort the whole report.
const lineNotFound = "Line not found"

// ContentCache stores fetched file contents keyed by commit. Content at a
// commit SHA is immutable, so entries never expire.
type ContentCache interface {
	Get(ctx context.Context, owner, repo, ref, path string) (string, bool, error)
	Put(ctx context.Context, owner, repo, ref, path, content string) error
}

// Options configures a Client.
type Options struct {
	// Token is an optional GitHub token. Unauthenticated access works for
	// public repositories; a token raises rate limits and enables the
	// GraphQL resolved-thread lookup.
	Token string

	// BaseURL overrides the API endpoint. Used by tests; must end in "/".
	BaseURL string

	// Cache, when non-nil, caches file contents fetched by FileLine.
	Cache ContentCache
}

// Client wraps the GitHub REST (and optionally GraphQL) API for the calls
// the exporter needs. A single Client reuses its underlying HTTP
// connections across calls.
type Client struct {
	gh        *gh.Client
	token     string
	cache     ContentCache
	gqlOnce   sync.Once
	gqlClient *githubv4.Client
}

// NewClient creates a Client using the go-github-ratelimit transport so
// secondary rate limits are waited out instead of surfacing as errors.
func NewClient(opts Options) (*Client, error) {
	client := gh.NewClient(github_ratelimit.NewClient(nil))
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("setting API base URL: %w", err)
		}
	}
	return &Client{gh: client, token: opts.Token, cache: opts.Cache}, nil
}

// PullRequest fetches the PR metadata for the report header.
func (c *Client) PullRequest(ctx context.Context, ref PRRef) (*PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, apiError("fetching pull request", err)
	}

	switch {
	case pr.Title == nil:
		return nil, &MissingFieldError{Field: "title"}
	case pr.User == nil || pr.User.Login == nil:
		return nil, &MissingFieldError{Field: "user.login"}
	case pr.CreatedAt == nil:
		return nil, &MissingFieldError{Field: "created_at"}
	}

	return &PullRequest{
		Title:     *pr.Title,
		Author:    *pr.User.Login,
		CreatedAt: pr.CreatedAt.Time,
	}, nil
}

// ReviewComments fetches all inline review comments on the PR, in API
// response order, following pagination.
func (c *Client) ReviewComments(ctx context.Context, ref PRRef) ([]Comment, error) {
	var comments []Comment
	opts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		batch, resp, err := c.gh.PullRequests.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, apiError("listing review comments", err)
		}
		for _, rc := range batch {
			comment, err := mapReviewComment(rc)
			if err != nil {
				return nil, err
			}
			comments = append(comments, comment)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// issueComment is decoded from the raw issue-comments endpoint. go-github's
// typed IssueComment drops in_reply_to, which reply grouping needs.
type issueComment struct {
	ID        *int64        `json:"id"`
	Body      *string       `json:"body"`
	User      *gh.User      `json:"user"`
	CreatedAt *gh.Timestamp `json:"created_at"`
	InReplyTo *int64        `json:"in_reply_to"`
}

// IssueComments fetches all general (non-inline) comments on the PR, in
// API response order, following pagination.
func (c *Client) IssueComments(ctx context.Context, ref PRRef) ([]Comment, error) {
	var comments []Comment
	page := 1
	for {
		u := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=100&page=%d",
			ref.Owner, ref.Repo, ref.Number, page)
		req, err := c.gh.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("building issue comments request: %w", err)
		}

		var batch []*issueComment
		resp, err := c.gh.Do(ctx, req, &batch)
		if err != nil {
			return nil, apiError("listing issue comments", err)
		}
		for _, ic := range batch {
			comment, err := mapIssueComment(ic)
			if err != nil {
				return nil, err
			}
			comments = append(comments, comment)
		}
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return comments, nil
}

// FileLine fetches the file at path as of ref and returns the 1-indexed
// line, trimmed of surrounding whitespace. Out-of-range line numbers yield
// the "Line not found" sentinel rather than an error.
func (c *Client) FileLine(ctx context.Context, owner, repo, path, ref string, line int) (string, error) {
	content, err := c.fileContent(ctx, owner, repo, path, ref)
	if err != nil {
		return "", err
	}

	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return lineNotFound, nil
	}
	return strings.TrimSpace(lines[line-1]), nil
}

// fileContent returns the decoded file content at ref, consulting the
// cache first. Cache failures degrade to a normal fetch.
func (c *Client) fileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	if c.cache != nil {
		content, ok, err := c.cache.Get(ctx, owner, repo, ref, path)
		if err != nil {
			slog.Debug("content cache read failed", "path", path, "ref", ref, "error", err)
		} else if ok {
			slog.Debug("content cache hit", "path", path, "ref", ref)
			return content, nil
		}
	}

	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path,
		&gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", apiError("fetching file contents", err)
	}
	if file == nil {
		return "", &MissingFieldError{Field: "content"}
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding file content: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, owner, repo, ref, path, content); err != nil {
			slog.Debug("content cache write failed", "path", path, "ref", ref, "error", err)
		}
	}
	return content, nil
}

func mapReviewComment(rc *gh.PullRequestComment) (Comment, error) {
	switch {
	case rc.ID == nil:
		return Comment{}, &MissingFieldError{Field: "id"}
	case rc.User == nil || rc.User.Login == nil:
		return Comment{}, &MissingFieldError{Field: "user.login"}
	case rc.Body == nil:
		return Comment{}, &MissingFieldError{Field: "body"}
	case rc.CreatedAt == nil:
		return Comment{}, &MissingFieldError{Field: "created_at"}
	}

	return Comment{
		ID:           *rc.ID,
		Author:       *rc.User.Login,
		Body:         *rc.Body,
		CreatedAt:    rc.CreatedAt.Time,
		Path:         rc.GetPath(),
		Line:         rc.GetLine(),
		OriginalLine: rc.GetOriginalLine(),
		DiffHunk:     rc.GetDiffHunk(),
		CommitID:     rc.GetCommitID(),
		InReplyTo:    rc.GetInReplyTo(),
	}, nil
}

func mapIssueComment(ic *issueComment) (Comment, error) {
	switch {
	case ic.ID == nil:
		return Comment{}, &MissingFieldError{Field: "id"}
	case ic.User == nil || ic.User.Login == nil:
		return Comment{}, &MissingFieldError{Field: "user.login"}
	case ic.Body == nil:
		return Comment{}, &MissingFieldError{Field: "body"}
	case ic.CreatedAt == nil:
		return Comment{}, &MissingFieldError{Field: "created_at"}
	}

	comment := Comment{
		ID:        *ic.ID,
		Author:    *ic.User.Login,
		Body:      *ic.Body,
		CreatedAt: ic.CreatedAt.Time,
	}
	if ic.InReplyTo != nil {
		comment.InReplyTo = *ic.InReplyTo
	}
	return comment, nil
}

// graphQLClient lazily creates the GraphQL client. Returns nil without a
// token — the GraphQL API rejects unauthenticated requests.
func (c *Client) graphQLClient(ctx context.Context) *githubv4.Client {
	if c.token == "" {
		return nil
	}
	c.gqlOnce.Do(func() {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
		c.gqlClient = githubv4.NewClient(oauth2.NewClient(ctx, ts))
	})
	return c.gqlClient
}
