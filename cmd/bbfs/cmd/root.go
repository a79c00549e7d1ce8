package cmd

import (
	"fmt"
	"os"

	"github.com/corey/bbfs/internal/app"
	"github.com/corey/bbfs/internal/config"
	"github.com/corey/bbfs/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose  bool
	logger   *zap.Logger
	settings config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bbfs",
	Short: "bbfs — digit frequency analysis for draw histories",
	Long:  "Ranks digits by frequency, recommends a BBFS set with its mirror, and lists the strongest digit pairs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewCLI(verbose)

		paths := app.NewPaths(projectRoot())
		cfg, err := config.Load(paths.Config, paths.Env)
		if err != nil {
			return err
		}
		settings = cfg
		logger.Debug("config loaded",
			zap.String("path", paths.Config),
			zap.Int("top_n", settings.TopN))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(mirrorCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(watchCmd)
}
