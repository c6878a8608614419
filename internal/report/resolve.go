package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/prcomments/internal/github"
)

// LineFetcher fetches a single line of a file at a commit.
type LineFetcher interface {
	FileLine(ctx context.Context, owner, repo, path, ref string, line int) (string, error)
}

// ResolveLine determines the code snippet to display for a review comment
// and whether the comment is outdated.
//
// A comment carrying a diff hunk refers to a historical position; the
// hunk's last line is the commented one, so it is used directly (leading
// +/- markers stripped) and no fetch occurs. Otherwise the line is fetched
// from the file at the comment's commit. Failures in this path degrade to
// placeholder text — the report must still render.
func ResolveLine(ctx context.Context, fetcher LineFetcher, owner, repo string, c github.Comment) (snippet string, outdated bool) {
	if c.DiffHunk != "" {
		hunkLines := strings.Split(c.DiffHunk, "\n")
		last := hunkLines[len(hunkLines)-1]
		return strings.TrimSpace(strings.TrimLeft(last, "+-")), true
	}

	line := c.Line
	if line == 0 {
		line = c.OriginalLine
	}
	if line == 0 {
		return "No line number available", false
	}

	content, err := fetcher.FileLine(ctx, owner, repo, c.Path, c.CommitID, line)
	if err != nil {
		return fmt.Sprintf("Could not fetch line content: %v", err), false
	}
	return content, false
}
