package github

import "time"

// PRRef identifies a pull request by repository owner, repository name,
// and PR number, as parsed from a github.com URL.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// PullRequest holds the PR metadata the report header needs.
type PullRequest struct {
	Title     string
	Author    string
	CreatedAt time.Time
}

// Comment is a single PR comment, either a review comment (anchored to a
// file/line, possibly carrying a diff hunk) or a general issue comment.
// Optional fields are zero-valued when the API omits them; required fields
// are validated once at decode time so downstream code never re-checks.
type Comment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time

	// Review-comment fields. Empty/zero for general comments.
	Path         string
	Line         int
	OriginalLine int
	DiffHunk     string
	CommitID     string

	// InReplyTo is the parent comment ID; zero for root comments.
	// Populated from in_reply_to_id on review comments and in_reply_to
	// on issue comments.
	InReplyTo int64
}

// IsReply reports whether the comment is a reply to another comment.
func (c Comment) IsReply() bool {
	return c.InReplyTo != 0
}
