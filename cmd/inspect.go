package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/utils"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/validate"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <payload-file>",
	Short: "Show payload metadata, measured size against budget, and unit health",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		p, err := payload.Load(args[0])
		if err != nil {
			return err
		}
		meta, err := p.Meta()
		if err != nil {
			return err
		}

		fmt.Printf("version:     %s\n", meta.Version)
		fmt.Printf("level:       L%d (%s)\n", meta.Level, reg.Name(meta.Level))
		fmt.Printf("contentType: %s\n", meta.ContentType)
		fmt.Printf("sourceHash:  %s\n", meta.SourceHash)
		if !meta.GeneratedAt.IsZero() {
			fmt.Printf("generatedAt: %s\n", meta.GeneratedAt.Format(time.RFC3339))
		}
		fmt.Printf("available:   %v\n", meta.AvailableLevels)
		if meta.TTLSeconds > 0 {
			fmt.Printf("ttlSeconds:  %d (overrides level default %d)\n", meta.TTLSeconds, reg.TTLFor(meta.Level))
		}
		if err := meta.Validate(); err != nil {
			fmt.Printf("⚠ metadata: %v\n", err)
		}

		// Measure the encoded payload with the default token heuristic and
		// compare against the level budget.
		encoded, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		measured := utils.CountTokens(string(encoded))
		b := reg.BudgetFor(meta.Level)
		fmt.Printf("tokens:      declared %d, measured %d (budget %d..%s, target %d)\n",
			meta.TokenCount, measured, b.Min, formatMax(b.Max), b.Target)
		if b.Max != schema.Unbounded && measured > b.Max {
			fmt.Printf("⚠ measured size exceeds the L%d budget\n", meta.Level)
		}

		if abstract, ok := p["abstract"].(string); ok && abstract != "" {
			fmt.Printf("abstract:    %s\n", utils.TruncateToTokenLimit(abstract, 20))
		}

		if units := p.Units(); len(units) > 0 {
			fmt.Printf("units:       %d\n", len(units))
			if err := validate.CheckUnits(p); err != nil {
				fmt.Printf("⚠ unit tree: %v\n", err)
			}
			if err := validate.CheckReferences(p); err != nil {
				fmt.Printf("⚠ unit refs: %v\n", err)
			}
		}

		if highest, ok := validate.HighestLevel(reg, p); ok {
			fmt.Printf("satisfies:   up to L%d\n", highest)
			if highest < meta.Level {
				fmt.Printf("⚠ declared level L%d is higher than the satisfied L%d\n", meta.Level, highest)
			}
		} else {
			fmt.Println("⚠ payload satisfies no level")
		}
		return nil
	},
}

func formatMax(max int) string {
	if max == schema.Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", max)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
