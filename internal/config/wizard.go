package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ziprun! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (history database)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "Port for `ziprun serve`",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("enter a port between 0 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 3. Runtime defaults.
	rt, err := PromptRuntime(cfg.Runtime)
	if err != nil {
		return nil, err
	}
	cfg.Runtime = rt

	// 4. Extra exclude patterns.
	excludePrompt := promptui.Prompt{
		Label:   "Extra archive exclude patterns (comma-separated, leave blank for defaults)",
		Default: "",
	}
	excludeStr, err := excludePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	if excludeStr != "" {
		cfg.Archive.Exclude = append(cfg.Archive.Exclude, splitAndTrim(excludeStr)...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// PromptRuntime asks for the API base URL and key, offering current as the
// default answers. The key is masked while typing.
func PromptRuntime(current RuntimeConfig) (RuntimeConfig, error) {
	basePrompt := promptui.Prompt{
		Label:   "API base URL",
		Default: current.BaseURL,
		Validate: func(s string) error {
			if s == "" {
				return nil
			}
			u, err := url.Parse(s)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("enter an absolute URL")
			}
			return nil
		},
	}
	baseURL, err := basePrompt.Run()
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("base url: %w", err)
	}

	keyPrompt := promptui.Prompt{
		Label: "API key (leave blank to keep current)",
		Mask:  '*',
	}
	key, err := keyPrompt.Run()
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("api key: %w", err)
	}
	if key == "" {
		key = current.Key
	}

	return RuntimeConfig{BaseURL: baseURL, Key: key}, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
