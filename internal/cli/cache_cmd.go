package cli

import (
	"fmt"
	"path/filepath"

	"github.com/prcomments/internal/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the file-content cache",
}

func init() {
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// cacheDBPath resolves the cache database location from config.
func cacheDBPath() (string, error) {
	dir := appConfig.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "contents.db"), nil
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cacheDBPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached file contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := cacheDBPath()
		if err != nil {
			return err
		}

		store, err := cache.Open(path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}
