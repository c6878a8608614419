package report

import (
	"testing"
	"time"

	"github.com/prcomments/internal/github"
	"github.com/stretchr/testify/assert"
)

func testReport() Report {
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return Report{
		Ref: github.PRRef{Owner: "acme", Repo: "web", Number: 7},
		PR:  &github.PullRequest{Title: "Fix bug", Author: "alice", CreatedAt: created},
		ReviewThreads: []Thread{
			{
				Root: github.Comment{
					ID:        100,
					Author:    "alice",
					Body:      "looks odd",
					CreatedAt: created,
					Path:      "a.py",
					Line:      2,
				},
				Replies: []github.Comment{
					{
						ID:        101,
						Author:    "bob",
						Body:      "fixed",
						CreatedAt: time.Date(2024, 3, 5, 11, 30, 0, 0, time.UTC),
						InReplyTo: 100,
					},
				},
				Snippet: "total = a + b",
			},
		},
		HasReviewComments: true,
	}
}

func TestRenderReviewScenario(t *testing.T) {
	got := Render(testReport())

	want := "# PR Comments: acme/web#7\n" +
		"\n" +
		"**Title**: Fix bug\n" +
		"**Author**: alice\n" +
		"**Created**: 2024-03-05 10:00:00\n" +
		"\n" +
		"\n" +
		"## Code Review Comments\n" +
		"\n" +
		"* File `a.py`, Line 2:\n" +
		"  ```\n" +
		"  total = a + b\n" +
		"  ```\n" +
		"  * alice, 2024-03-05 10:00:00:\n" +
		"    looks odd\n" +
		"    * bob, 2024-03-05 11:30:00:\n" +
		"      fixed\n"

	assert.Equal(t, want, got)
	assert.NotContains(t, got, "## General Comments",
		"no general section when there are no issue comments")
}

func TestRenderIdempotent(t *testing.T) {
	r := testReport()
	assert.Equal(t, Render(r), Render(r))
}

func TestRenderGeneralComments(t *testing.T) {
	created := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	r := Report{
		Ref: github.PRRef{Owner: "acme", Repo: "web", Number: 7},
		PR:  &github.PullRequest{Title: "Fix bug", Author: "alice", CreatedAt: created},
		GeneralThreads: []Thread{
			{
				Root: github.Comment{ID: 200, Author: "carol", Body: "ship it", CreatedAt: created},
				Replies: []github.Comment{
					{ID: 201, Author: "dave", Body: "agreed", CreatedAt: created, InReplyTo: 200},
				},
			},
		},
		HasIssueComments: true,
	}

	got := Render(r)

	assert.NotContains(t, got, "## Code Review Comments")
	assert.Contains(t, got, "\n## General Comments\n")
	assert.Contains(t, got, "* carol, 2024-03-06 09:00:00:\n  ship it")
	assert.Contains(t, got, "  * dave, 2024-03-06 09:00:00:\n    agreed",
		"replies indent one level under the root")
}

func TestRenderCRLFNormalized(t *testing.T) {
	r := testReport()
	r.ReviewThreads[0].Root.Body = "first\r\nsecond"

	got := Render(r)
	assert.Contains(t, got, "    first second")
	assert.NotContains(t, got, "\r")
}

func TestRenderLineAnnotations(t *testing.T) {
	tests := []struct {
		name   string
		thread Thread
		want   string
	}{
		{
			name: "outdated",
			thread: Thread{
				Root:     github.Comment{Path: "a.py", Line: 2, DiffHunk: "+x"},
				Snippet:  "x",
				Outdated: true,
			},
			want: "* File `a.py`, (Outdated):",
		},
		{
			name: "original line fallback",
			thread: Thread{
				Root:    github.Comment{Path: "a.py", OriginalLine: 9},
				Snippet: "y",
			},
			want: "* File `a.py`, Line 9:",
		},
		{
			name: "no line number",
			thread: Thread{
				Root:    github.Comment{Path: "a.py"},
				Snippet: "No line number available",
			},
			want: "* File `a.py`, Line Unknown:",
		},
		{
			name: "resolved",
			thread: Thread{
				Root:     github.Comment{Path: "a.py", Line: 4},
				Snippet:  "z",
				Resolved: true,
			},
			want: "* File `a.py`, Line 4 (Resolved):",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testReport()
			tt.thread.Root.Author = "alice"
			tt.thread.Root.CreatedAt = r.PR.CreatedAt
			tt.thread.Root.Body = "b"
			r.ReviewThreads = []Thread{tt.thread}

			assert.Contains(t, Render(r), tt.want)
		})
	}
}

func TestRenderHeaderOnlyWhenNoComments(t *testing.T) {
	r := Report{
		Ref: github.PRRef{Owner: "acme", Repo: "web", Number: 7},
		PR: &github.PullRequest{
			Title:     "Fix bug",
			Author:    "alice",
			CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		},
	}

	got := Render(r)
	assert.NotContains(t, got, "## Code Review Comments")
	assert.NotContains(t, got, "## General Comments")
	assert.Contains(t, got, "# PR Comments: acme/web#7")
}
