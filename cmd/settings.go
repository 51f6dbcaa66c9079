package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ziprun/internal/compose"
	"github.com/ziadkadry99/ziprun/internal/config"
)

var (
	settingsBaseURL string
	settingsKey     string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the runtime configuration injected into documents",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current runtime configuration",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the runtime configuration",
	Long:  `Sets the API base URL and key. Without --baseurl or --key an interactive prompt asks for both.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget stored settings and fall back to the config file and environment",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsBaseURL, "baseurl", "", "API base URL")
	settingsSetCmd.Flags().StringVar(&settingsKey, "key", "", "API key")

	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rt, err := st.settings.Get(context.Background())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "baseurl: %s\n", rt.BaseURL)
	fmt.Fprintf(out, "key:     %s\n", maskKey(rt.Key))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
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
	current, err := st.settings.Get(ctx)
	if err != nil {
		return err
	}

	var next compose.Config
	flags := cmd.Flags()
	if flags.Changed("baseurl") || flags.Changed("key") {
		next = current
		if flags.Changed("baseurl") {
			next.BaseURL = settingsBaseURL
		}
		if flags.Changed("key") {
			next.Key = settingsKey
		}
	} else {
		rt, err := config.PromptRuntime(config.RuntimeConfig{BaseURL: current.BaseURL, Key: current.Key})
		if err != nil {
			return err
		}
		next = compose.Config{BaseURL: rt.BaseURL, Key: rt.Key}
	}

	if err := st.settings.Set(ctx, next); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.settings.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings reset.")
	return nil
}
