package cli

import (
	"fmt"

	"github.com/prcomments/internal/config"
	"github.com/prcomments/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	appConfig  *config.Config

	rootCmd = &cobra.Command{
		Use:   "prcomments <pr-url>",
		Short: "Export a GitHub pull request's comments to markdown",
		Long: `Fetch a public GitHub pull request's review and issue comments and
save them as a markdown report, with replies grouped under their
parent comments and review comments annotated with the commented line.`,
		Example: `  prcomments https://github.com/golang/go/pull/12345
  prcomments -o review.md https://github.com/golang/go/pull/12345
  prcomments --no-cache https://github.com/golang/go/pull/12345`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runExport,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (skips normal config discovery)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file path (default pr_comments.md)")
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing output file without asking")
	rootCmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the file-content cache for this run")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
