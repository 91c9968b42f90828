package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/validate"
)

var (
	validateLevel  int
	validateStrict bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <payload-file>",
	Short: "Check a payload against a level contract, or report its highest level",
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

		if validateLevel >= 0 {
			l := schema.Level(validateLevel)
			if !schema.Valid(l) {
				return fmt.Errorf("level %d out of range 0-9", validateLevel)
			}
			if !validate.ConformsTo(reg, p, l) {
				highest, ok := validate.HighestLevel(reg, p)
				if ok {
					return fmt.Errorf("payload does not conform to L%d (highest satisfied: L%d)", l, highest)
				}
				return fmt.Errorf("payload does not conform to L%d (base metadata check failed)", l)
			}
			fmt.Printf("✓ conforms to L%d (%s)\n", l, reg.Name(l))
		} else {
			highest, ok := validate.HighestLevel(reg, p)
			if !ok {
				return fmt.Errorf("payload satisfies no level (malformed or missing metadata)")
			}
			fmt.Printf("✓ highest satisfied level: L%d (%s)\n", highest, reg.Name(highest))
		}

		if validateStrict {
			if err := validate.CheckUnits(p); err != nil {
				return fmt.Errorf("unit check: %w", err)
			}
			if err := validate.CheckReferences(p); err != nil {
				return fmt.Errorf("reference check: %w", err)
			}
			fmt.Println("✓ unit tree and unit references are consistent")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().IntVar(&validateLevel, "level", -1, "certify conformance to this level (default: report highest)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "also run advisory unit and reference checks")
}
