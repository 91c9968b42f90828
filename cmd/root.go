package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/matteuccimarco/slim-pyramid-protocol/internal/config"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "slim",
	Short: "SLIM pyramid: validate, inspect and negotiate progressive-disclosure payloads",
	Long: `slim works with SLIM pyramid payloads: content pre-rendered into up to
ten cumulative detail levels (L0-L9), each with a predictable token
budget, so a consumer can request only the detail it currently needs.

The CLI validates payloads against level contracts, inspects their
metadata and measured size, picks the level to serve under client
constraints, and runs a reference negotiation server.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.slim/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// registry returns the effective level table: the stock one, or the
// deployment's override-injected copy when the config carries overrides.
func registry() (*schema.Registry, error) {
	if cfg == nil {
		return schema.Default(), nil
	}
	return cfg.Registry()
}
