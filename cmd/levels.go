package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/utils"
)

var levelsJSON bool

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the level table: budgets, field contracts and cache lifetimes",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}
		if levelsJSON {
			out := make([]map[string]any, 0, len(schema.Levels()))
			for _, l := range schema.Levels() {
				fields := reg.FieldsFor(l)
				out = append(out, map[string]any{
					"level":      l,
					"name":       reg.Name(l),
					"budget":     reg.BudgetFor(l),
					"ttlSeconds": reg.TTLFor(l),
					"required":   fieldNames(fields.Required),
					"optional":   fieldNames(fields.Optional),
				})
			}
			b, err := utils.PrettyJSON(out)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		for _, l := range schema.Levels() {
			b := reg.BudgetFor(l)
			max := fmt.Sprintf("%d", b.Max)
			if b.Max == schema.Unbounded {
				max = "unbounded"
			}
			fields := reg.FieldsFor(l)
			fmt.Printf("L%d %-10s tokens %d..%s (target %d)  ttl %ds\n",
				l, reg.Name(l), b.Min, max, b.Target, reg.TTLFor(l))
			fmt.Printf("   required: %s\n", strings.Join(fieldNames(fields.Required), ", "))
			if len(fields.Optional) > 0 {
				fmt.Printf("   optional: %s\n", strings.Join(fieldNames(fields.Optional), ", "))
			}
		}
		return nil
	},
}

func fieldNames(fields []schema.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func init() {
	rootCmd.AddCommand(levelsCmd)
	levelsCmd.Flags().BoolVar(&levelsJSON, "json", false, "emit the table as JSON")
}
