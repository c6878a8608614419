package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client wired to a test HTTP server.
func newTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL + "/"
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestPullRequest(t *testing.T) {
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, &gh.PullRequest{
			Number:    gh.Ptr(7),
			Title:     gh.Ptr("Fix bug"),
			User:      &gh.User{Login: gh.Ptr("alice")},
			CreatedAt: &gh.Timestamp{Time: created},
		})
	})

	client := newTestClient(t, mux, Options{})
	pr, err := client.PullRequest(context.Background(), PRRef{Owner: "acme", Repo: "web", Number: 7})
	require.NoError(t, err)

	assert.Equal(t, "Fix bug", pr.Title)
	assert.Equal(t, "alice", pr.Author)
	assert.Equal(t, created, pr.CreatedAt)
}

func TestPullRequestMissingField(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		// No title.
		writeJSON(t, w, &gh.PullRequest{
			Number:    gh.Ptr(7),
			User:      &gh.User{Login: gh.Ptr("alice")},
			CreatedAt: &gh.Timestamp{Time: time.Now()},
		})
	})

	client := newTestClient(t, mux, Options{})
	_, err := client.PullRequest(context.Background(), PRRef{Owner: "acme", Repo: "web", Number: 7})

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)
}

func TestPullRequestNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	client := newTestClient(t, mux, Options{})
	_, err := client.PullRequest(context.Background(), PRRef{Owner: "acme", Repo: "web", Number: 7})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "404")
}

func TestReviewComments(t *testing.T) {
	created := time.Date(2024, 3, 5, 11, 30, 0, 0, time.UTC)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/pulls/7/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []*gh.PullRequestComment{
			{
				ID:        gh.Ptr(int64(100)),
				User:      &gh.User{Login: gh.Ptr("alice")},
				Body:      gh.Ptr("looks odd"),
				CreatedAt: &gh.Timestamp{Time: created},
				Path:      gh.Ptr("a.py"),
				Line:      gh.Ptr(2),
				CommitID:  gh.Ptr("abc123"),
			},
			{
				ID:        gh.Ptr(int64(101)),
				User:      &gh.User{Login: gh.Ptr("bob")},
				Body:      gh.Ptr("fixed"),
				CreatedAt: &gh.Timestamp{Time: created.Add(time.Hour)},
				Path:      gh.Ptr("a.py"),
				InReplyTo: gh.Ptr(int64(100)),
			},
		})
	})

	client := newTestClient(t, mux, Options{})
	comments, err := client.ReviewComments(context.Background(), PRRef{Owner: "acme", Repo: "web", Number: 7})
	require.NoError(t, err)
	require.Len(t, comments, 2)

	root := comments[0]
	assert.Equal(t, int64(100), root.ID)
	assert.Equal(t, "alice", root.Author)
	assert.Equal(t, "looks odd", root.Body)
	assert.Equal(t, "a.py", root.Path)
	assert.Equal(t, 2, root.Line)
	assert.Equal(t, "abc123", root.CommitID)
	assert.False(t, root.IsReply())

	reply := comments[1]
	assert.Equal(t, int64(101), reply.ID)
	assert.Equal(t, int64(100), reply.InReplyTo)
	assert.True(t, reply.IsReply())
}

func TestIssueComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		// Raw JSON so the in_reply_to field (not in go-github's typed
		// IssueComment) is exercised.
		fmt.Fprint(w, `[
			{"id": 200, "body": "ship it", "user": {"login": "carol"}, "created_at": "2024-03-06T09:00:00Z"},
			{"id": 201, "body": "agreed", "user": {"login": "dave"}, "created_at": "2024-03-06T10:00:00Z", "in_reply_to": 200}
		]`)
	})

	client := newTestClient(t, mux, Options{})
	comments, err := client.IssueComments(context.Background(), PRRef{Owner: "acme", Repo: "web", Number: 7})
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "carol", comments[0].Author)
	assert.Equal(t, "ship it", comments[0].Body)
	assert.False(t, comments[0].IsReply())
	assert.Equal(t, time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC), comments[0].CreatedAt)

	assert.Equal(t, int64(200), comments[1].InReplyTo)
	assert.True(t, comments[1].IsReply())
}

func contentsHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"name":     "a.py",
			"path":     "a.py",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	}
}

func TestFileLine(t *testing.T) {
	file := "one\ntwo\n  three  \nfour\nfive"

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/contents/a.py", contentsHandler(t, file))

	client := newTestClient(t, mux, Options{})
	ctx := context.Background()

	line, err := client.FileLine(ctx, "acme", "web", "a.py", "abc123", 3)
	require.NoError(t, err)
	assert.Equal(t, "three", line, "line is 1-indexed and whitespace-trimmed")

	line, err = client.FileLine(ctx, "acme", "web", "a.py", "abc123", 99)
	require.NoError(t, err)
	assert.Equal(t, "Line not found", line)
}

func TestFileLineFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/contents/a.py", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "rate limited"}`)
	})

	client := newTestClient(t, mux, Options{})
	_, err := client.FileLine(context.Background(), "acme", "web", "a.py", "abc123", 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

// fakeCache is an in-memory ContentCache test double.
type fakeCache struct {
	entries map[string]string
	puts    int
}

func (f *fakeCache) key(owner, repo, ref, path string) string {
	return owner + "/" + repo + "@" + ref + ":" + path
}

func (f *fakeCache) Get(_ context.Context, owner, repo, ref, path string) (string, bool, error) {
	content, ok := f.entries[f.key(owner, repo, ref, path)]
	return content, ok, nil
}

func (f *fakeCache) Put(_ context.Context, owner, repo, ref, path, content string) error {
	f.puts++
	f.entries[f.key(owner, repo, ref, path)] = content
	return nil
}

var _ ContentCache = (*fakeCache)(nil)

func TestFileLineCacheHit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected HTTP request %s %s: cached content should short-circuit the fetch", r.Method, r.URL)
	})

	seeded := &fakeCache{entries: map[string]string{
		"acme/web@abc123:a.py": "one\ntwo\nthree",
	}}

	client := newTestClient(t, mux, Options{Cache: seeded})
	line, err := client.FileLine(context.Background(), "acme", "web", "a.py", "abc123", 2)
	require.NoError(t, err)
	assert.Equal(t, "two", line)
}

func TestFileLineCacheFill(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v3/repos/acme/web/contents/a.py", contentsHandler(t, "one\ntwo"))

	empty := &fakeCache{entries: map[string]string{}}
	client := newTestClient(t, mux, Options{Cache: empty})

	line, err := client.FileLine(context.Background(), "acme", "web", "a.py", "abc123", 1)
	require.NoError(t, err)
	assert.Equal(t, "one", line)
	assert.Equal(t, 1, empty.puts)
	assert.Equal(t, "one\ntwo", empty.entries["acme/web@abc123:a.py"])
}
