package report

import (
	"log/slog"

	"github.com/prcomments/internal/github"
)

// Thread is a root comment with its replies in API order. Snippet,
// Outdated, and Resolved are only meaningful for review threads.
type Thread struct {
	Root    github.Comment
	Replies []github.Comment

	Snippet  string
	Outdated bool
	Resolved bool
}

// Organize partitions a flat comment list into root comments and a map
// from parent comment ID to its replies. Input order is preserved on both
// sides; no sorting or cycle handling, since GitHub threads are one level
// deep (replies always reference the root).
func Organize(comments []github.Comment) ([]github.Comment, map[int64][]github.Comment) {
	var roots []github.Comment
	replies := make(map[int64][]github.Comment)

	for _, c := range comments {
		if c.IsReply() {
			replies[c.InReplyTo] = append(replies[c.InReplyTo], c)
		} else {
			roots = append(roots, c)
		}
	}
	return roots, replies
}

// BuildThreads organizes comments into threads. Replies whose parent is
// not among the fetched comments (e.g. the parent was deleted) are dropped
// from the result; each drop is logged so the loss is visible.
func BuildThreads(comments []github.Comment) []Thread {
	roots, replies := Organize(comments)

	threads := make([]Thread, 0, len(roots))
	for _, root := range roots {
		threads = append(threads, Thread{Root: root, Replies: replies[root.ID]})
		delete(replies, root.ID)
	}

	for parentID, orphaned := range replies {
		for _, c := range orphaned {
			slog.Warn("dropping reply to unknown parent comment",
				"commentID", c.ID, "parentID", parentID, "author", c.Author)
		}
	}
	return threads
}
