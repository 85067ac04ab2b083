// Package main provides the attribution-track CLI for recording clicks,
// conversions and events from scripts and servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jdziat/attribution-go"
	"github.com/jdziat/attribution-go/internal/config"
)

const timeout = 30 * time.Second

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	baseURL    string
	apiKey     string
	debug      bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	// Check if tracking is disabled
	if config.IsDisabled() {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree writing results to out.
func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "attribution-track",
		Short: "Record attribution clicks, conversions and events",
		Long: `attribution-track sends tracking events to an attribution API.

The click identifier of the last successful click is kept between runs
(Redis, a state file, or memory) so later conversions are attributed to it.

Environment Variables:
  ATTRIBUTION_BASE_URL    Base URL of the attribution API
  ATTRIBUTION_API_KEY     API key sent as a bearer token
  ATTRIBUTION_DEBUG       Set to "true" for debug logging
  ATTRIBUTION_REDIS_ADDR  Redis address for shared click storage
  ATTRIBUTION_STATE_FILE  Click state file ("-" disables it)
  ATTRIBUTION_DISABLED    Set to "true" to disable tracking

Configuration:
  Create .attribution.yaml in the working directory or a parent.`,
		Version:       attribution.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadDotEnv(flags.envFile)
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default: nearest .attribution.yaml)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load if present")
	pf.StringVar(&flags.baseURL, "base-url", "", "attribution API base URL")
	pf.StringVar(&flags.apiKey, "api-key", "", "attribution API key")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newClickCmd(flags),
		newConversionCmd(flags),
		newEventCmd(flags),
		newFingerprintCmd(flags),
	)

	return root
}

// loadDotEnv loads path into the process environment. A missing file is
// not an error; variables already set are not overridden.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.baseURL != "" {
		cfg.BaseURL = flags.baseURL
	}
	if flags.apiKey != "" {
		cfg.APIKey = flags.apiKey
	}
	if flags.debug {
		cfg.Debug = true
	}
	return cfg, nil
}
