package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/circuitsim/pkg/circuit"
)

var catalogJSON bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the component types and their pins",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "output as JSON")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	specs := make([]circuit.ComponentTypeSpec, 0, len(circuit.Types()))
	for _, t := range circuit.Types() {
		specs = append(specs, circuit.SpecFor(t))
	}

	if catalogJSON {
		data, err := json.MarshalIndent(specs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	for _, spec := range specs {
		fmt.Fprintf(out, "%-14s %-12s %3.0fx%-3.0f %d pins\n",
			spec.Type, spec.Label, spec.Width, spec.Height, len(spec.Pins))
		for _, p := range spec.Pins {
			name := p.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(out, "    %-8s %-6s %-8s (%g, %g)\n", p.ID, name, p.Kind, p.OffsetX, p.OffsetY)
		}
	}
	return nil
}
