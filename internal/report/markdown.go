package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/prcomments/internal/github"
)

// timestampLayout is how API timestamps (YYYY-MM-DDTHH:MM:SSZ) are
// re-emitted in the report.
const timestampLayout = "2006-01-02 15:04:05"

// Report is everything the renderer needs, fully resolved. Rendering is
// pure: identical input produces byte-identical markdown.
type Report struct {
	Ref github.PRRef
	PR  *github.PullRequest

	ReviewThreads  []Thread
	GeneralThreads []Thread

	// Section headers are emitted when any comments of that kind were
	// fetched, even if all of them turned out to be orphaned replies.
	HasReviewComments bool
	HasIssueComments  bool
}

// Render assembles the markdown document.
func Render(r Report) string {
	lines := []string{
		fmt.Sprintf("# PR Comments: %s/%s#%d", r.Ref.Owner, r.Ref.Repo, r.Ref.Number),
		fmt.Sprintf("\n**Title**: %s", r.PR.Title),
		fmt.Sprintf("**Author**: %s", r.PR.Author),
		fmt.Sprintf("**Created**: %s\n", formatTimestamp(r.PR.CreatedAt)),
	}

	if r.HasReviewComments {
		lines = append(lines, "\n## Code Review Comments\n")
		for _, th := range r.ReviewThreads {
			lines = append(lines, reviewThreadLines(th)...)
			lines = append(lines, "")
		}
	}

	if r.HasIssueComments {
		lines = append(lines, "\n## General Comments\n")
		for _, th := range r.GeneralThreads {
			lines = append(lines, generalThreadLines(th)...)
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func reviewThreadLines(th Thread) []string {
	annotation := lineAnnotation(th)
	lines := []string{
		fmt.Sprintf("* File `%s`, %s:", th.Root.Path, annotation),
		"  ```",
		"  " + th.Snippet,
		"  ```",
		fmt.Sprintf("  * %s, %s:", th.Root.Author, formatTimestamp(th.Root.CreatedAt)),
		"    " + flattenBody(th.Root.Body),
	}
	for _, reply := range th.Replies {
		lines = append(lines,
			fmt.Sprintf("    * %s, %s:", reply.Author, formatTimestamp(reply.CreatedAt)),
			"      "+flattenBody(reply.Body),
		)
	}
	return lines
}

func generalThreadLines(th Thread) []string {
	lines := []string{
		fmt.Sprintf("* %s, %s:", th.Root.Author, formatTimestamp(th.Root.CreatedAt)),
		"  " + flattenBody(th.Root.Body),
	}
	for _, reply := range th.Replies {
		lines = append(lines,
			fmt.Sprintf("  * %s, %s:", reply.Author, formatTimestamp(reply.CreatedAt)),
			"    "+flattenBody(reply.Body),
		)
	}
	return lines
}

// lineAnnotation renders the position part of a review thread header:
// "(Outdated)" for hunk-anchored comments, otherwise "Line N" (or
// "Line Unknown" when the API gave no line number), with a "(Resolved)"
// suffix for threads resolved on GitHub.
func lineAnnotation(th Thread) string {
	var annotation string
	if th.Outdated {
		annotation = "(Outdated)"
	} else if line := lineNumber(th.Root); line > 0 {
		annotation = fmt.Sprintf("Line %d", line)
	} else {
		annotation = "Line Unknown"
	}
	if th.Resolved {
		annotation += " (Resolved)"
	}
	return annotation
}

func lineNumber(c github.Comment) int {
	if c.Line != 0 {
		return c.Line
	}
	return c.OriginalLine
}

// flattenBody collapses CRLF line endings to spaces so a comment body
// stays on its single list line.
func flattenBody(body string) string {
	return strings.ReplaceAll(body, "\r\n", " ")
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
