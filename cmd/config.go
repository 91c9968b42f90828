package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/matteuccimarco/slim-pyramid-protocol/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set slim configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("serve_addr: %s\n", cfg.ServeAddr)
		fmt.Printf("payload_dir: %s\n", cfg.PayloadDir)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		for key, b := range cfg.BudgetOverrides {
			fmt.Printf("budget_overrides.%s: target=%d variance=%d\n", key, b.Target, b.Variance)
		}
		for key, ttl := range cfg.TTLOverrides {
			fmt.Printf("ttl_overrides.%s: %d\n", key, ttl)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "serve_addr":
			cfg.ServeAddr = val
		case "payload_dir":
			cfg.PayloadDir = val
		case "log_level":
			switch val {
			case "trace", "debug", "info", "warn", "error":
				cfg.LogLevel = val
			default:
				return fmt.Errorf("invalid log_level: %s", val)
			}
		default:
			return fmt.Errorf("unknown key: %s (edit the config file for override tables)", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := &cfgpkg.Global{
			ServeAddr: "127.0.0.1:8547",
			LogLevel:  "info",
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Wrote default config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}
