package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ziprun/internal/config"
	"github.com/ziadkadry99/ziprun/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ziprun",
	Short: "Run a zipped TSX/React app as a single HTML document",
	Long: `ziprun takes a zip archive containing an index.html and its TypeScript/TSX
sources, bundles the module graph in memory and produces one self-contained
HTML document with the runtime configuration injected.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogging(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
