package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/prcomments/internal/cache"
	"github.com/prcomments/internal/github"
	"github.com/prcomments/internal/report"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	outputFlag  string
	forceFlag   bool
	noCacheFlag bool
)

// runExport is the main pipeline: parse URL, fetch PR metadata and both
// comment lists, organize threads, resolve line snippets, render, write.
// All fetching happens before the output file is touched, so an API
// failure never leaves a partial report behind.
func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ref, err := github.ParsePRURL(args[0])
	if err != nil {
		return err
	}

	outPath := outputFlag
	if outPath == "" {
		outPath = appConfig.Output.Path
	}
	if outPath == "" {
		outPath = "pr_comments.md"
	}

	opts := github.Options{
		Token:   appConfig.GitHub.Token,
		BaseURL: appConfig.GitHub.APIURL,
	}
	if store := openCache(); store != nil {
		defer store.Close()
		opts.Cache = store
	}

	client, err := github.NewClient(opts)
	if err != nil {
		return err
	}

	slog.Debug("fetching pull request", "ref", ref.String())
	pr, err := client.PullRequest(ctx, ref)
	if err != nil {
		return err
	}
	reviewComments, err := client.ReviewComments(ctx, ref)
	if err != nil {
		return err
	}
	issueComments, err := client.IssueComments(ctx, ref)
	if err != nil {
		return err
	}

	// Best-effort: resolution markers need GraphQL and a token.
	resolved, err := client.ResolvedThreads(ctx, ref)
	if err != nil {
		slog.Warn("could not look up resolved review threads", "error", err)
		resolved = nil
	}

	reviewThreads := report.BuildThreads(reviewComments)
	for i := range reviewThreads {
		th := &reviewThreads[i]
		th.Snippet, th.Outdated = report.ResolveLine(ctx, client, ref.Owner, ref.Repo, th.Root)
		th.Resolved = resolved[th.Root.ID]
	}
	generalThreads := report.BuildThreads(issueComments)

	markdown := report.Render(report.Report{
		Ref:               ref,
		PR:                pr,
		ReviewThreads:     reviewThreads,
		GeneralThreads:    generalThreads,
		HasReviewComments: len(reviewComments) > 0,
		HasIssueComments:  len(issueComments) > 0,
	})

	if err := confirmOverwrite(outPath); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	printSummary(cmd.OutOrStdout(), outPath, len(reviewThreads), len(generalThreads))
	return nil
}

// openCache opens the content cache per config and flags. Cache problems
// are never fatal — the run proceeds uncached.
func openCache() *cache.Store {
	if noCacheFlag || !appConfig.Cache.Enabled {
		return nil
	}

	dir := appConfig.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir()
		if err != nil {
			slog.Warn("content cache unavailable", "error", err)
			return nil
		}
	}

	store, err := cache.Open(filepath.Join(dir, "contents.db"))
	if err != nil {
		slog.Warn("content cache unavailable", "error", err)
		return nil
	}
	return store
}

// confirmOverwrite asks before replacing an existing output file when
// running interactively. Non-interactive runs overwrite silently.
func confirmOverwrite(path string) error {
	if forceFlag {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}

	overwrite := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
			Value(&overwrite),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("overwrite prompt: %w", err)
	}
	if !overwrite {
		return fmt.Errorf("refusing to overwrite %s", path)
	}
	return nil
}

func printSummary(w io.Writer, path string, reviewThreads, generalThreads int) {
	label := lipgloss.NewStyle().Bold(true)
	fmt.Fprintf(w, "%s %d\n", label.Render("Review threads:"), reviewThreads)
	fmt.Fprintf(w, "%s %d\n", label.Render("General threads:"), generalThreads)
	fmt.Fprintf(w, "Comments exported to %s\n", path)
}
