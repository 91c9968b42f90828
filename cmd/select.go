package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/negotiate"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/selector"
)

var (
	selectAvailable string
	selectLevel     int
	selectMaxLevel  int
	selectBudget    int
	selectPrefer    string
)

var selectCmd = &cobra.Command{
	Use:   "select --available 1,3,4,5,7 [--level n | --max-level n --token-budget n --prefer p]",
	Short: "Pick the level to serve under the given constraints",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		available, err := negotiate.ParseLevels(selectAvailable)
		if err != nil {
			return err
		}

		var req selector.Request
		f := cmd.Flags()
		if f.Changed("level") {
			l := schema.Level(selectLevel)
			if !schema.Valid(l) {
				return fmt.Errorf("level %d out of range 0-9", selectLevel)
			}
			req.Level = &l
		}
		if f.Changed("max-level") {
			l := schema.Level(selectMaxLevel)
			req.MaxLevel = &l
		}
		if f.Changed("token-budget") {
			req.TokenBudget = &selectBudget
		}
		if selectPrefer != "" {
			switch p := selector.Preference(selectPrefer); p {
			case selector.PreferMinimal, selector.PreferBalanced, selector.PreferComprehensive:
				req.Prefer = p
			default:
				return fmt.Errorf("invalid --prefer %q (use minimal, balanced or comprehensive)", selectPrefer)
			}
		}

		level, err := selector.Select(reg, available, req)
		if err != nil {
			return err
		}
		fmt.Printf("L%d (%s)\n", level, reg.Name(level))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.Flags().StringVar(&selectAvailable, "available", "", "comma-separated levels rendered for the content item")
	selectCmd.Flags().IntVar(&selectLevel, "level", 0, "explicit level request")
	selectCmd.Flags().IntVar(&selectMaxLevel, "max-level", 0, "level ceiling")
	selectCmd.Flags().IntVar(&selectBudget, "token-budget", 0, "token budget")
	selectCmd.Flags().StringVar(&selectPrefer, "prefer", "", "qualitative preference: minimal, balanced or comprehensive")
	_ = selectCmd.MarkFlagRequired("available")
}
