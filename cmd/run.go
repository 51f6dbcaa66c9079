package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ziprun/internal/history"
	"github.com/ziadkadry99/ziprun/internal/logging"
	"github.com/ziadkadry99/ziprun/internal/pipeline"
	"github.com/ziadkadry99/ziprun/internal/progress"
)

var (
	runOutput string
	runSave   bool
	runQuiet  bool
)

var runCmd = &cobra.Command{
	Use:   "run <archive|url>",
	Short: "Bundle a zip archive into a single HTML document",
	Long: `Loads the archive (a local path or an http(s) URL), finds index.html and its
module entry script, bundles every TypeScript/TSX file it reaches and writes
the composed document to --output (stdout by default).`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output HTML file (default stdout)")
	runCmd.Flags().BoolVar(&runSave, "save", false, "save the archive to history")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "no progress output")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	src, err := readSource(ctx, args[0])
	if err != nil {
		return err
	}

	if runSave {
		meta, err := st.history.Save(ctx, history.Upload{Name: src.Name, LastModified: src.LastModified, Data: src.Data})
		if err != nil {
			return fmt.Errorf("saving archive: %w", err)
		}
		logging.Info("saved to history", "id", meta.ID)
	}

	return runArchive(ctx, cmd.OutOrStdout(), st, newRunner(cfg), src.Data, runOutput, runQuiet)
}

// runArchive runs data with the stored settings and writes the document.
func runArchive(ctx context.Context, stdout io.Writer, st *stores, runner *pipeline.Runner, data []byte, output string, quiet bool) error {
	rt, err := st.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	var observe pipeline.Observer
	if !quiet && output != "" && output != "-" {
		observe = progress.Observe(progress.NewReporter())
	}

	out, err := runner.Run(data, rt, observe)
	if err != nil {
		return err
	}

	if err := writeOutput(stdout, output, out.HTML); err != nil {
		return err
	}
	if output != "" && output != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d modules, %d bytes) in %s\n",
			output, len(out.Build.Modules), len(out.HTML), out.Took.Round(time.Millisecond))
	}
	return nil
}
