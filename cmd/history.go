package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyRunOutput string
	historyRunQuiet  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved archives",
	Long:  `List, delete and re-run archives saved with --save or through the HTTP API.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved archives, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a saved archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRun,
}

func init() {
	historyRunCmd.Flags().StringVarP(&historyRunOutput, "output", "o", "", "output HTML file (default stdout)")
	historyRunCmd.Flags().BoolVarP(&historyRunQuiet, "quiet", "q", false, "no progress output")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyRunCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	metas, err := st.history.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(metas) == 0 {
		fmt.Fprintln(out, "No saved archives. Use `ziprun run --save` to add one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tSAVED")
	for _, m := range metas {
		saved := time.UnixMilli(m.CreatedAt).Format("2006-01-02 15:04:05")
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.ID, m.Name, m.Size, saved)
	}
	return w.Flush()
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if _, ok, err := st.history.Get(ctx, args[0]); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("no saved archive %q", args[0])
	}
	if err := st.history.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func runHistoryRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	data, ok, err := st.history.Load(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no saved archive %q", args[0])
	}
	return runArchive(ctx, cmd.OutOrStdout(), st, newRunner(cfg), data, historyRunOutput, historyRunQuiet)
}
