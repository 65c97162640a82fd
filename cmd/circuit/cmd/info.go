package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show circuit information",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	g, snap, err := loadCircuit(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Name:       %s\n", circuitName(path, snap))
	fmt.Fprintf(out, "Version:    %s\n", snap.Version)
	if !snap.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Created:    %s\n", snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(out, "Components: %d\n", g.Len())
	fmt.Fprintf(out, "Wires:      %d\n", g.WireCount())

	counts := make(map[circuit.ComponentType]int)
	for _, c := range g.Components() {
		counts[c.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	if len(types) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Components by type:")
		for _, t := range types {
			spec := circuit.SpecFor(circuit.ComponentType(t))
			fmt.Fprintf(out, "  %-16s %-14s x%d\n", t, spec.Label, counts[circuit.ComponentType(t)])
		}
	}

	if g.WireCount() > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Wires:")
		for _, w := range g.Wires() {
			fmt.Fprintf(out, "  %s -> %s\n",
				endpoint(g, w.FromComponentID, w.FromPinID),
				endpoint(g, w.ToComponentID, w.ToPinID))
		}
	}

	res := sim.NewEngine(sim.WithLogger(logger)).Evaluate(g)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Check:      %s (%s)\n", res.Message, res.Status)
	return nil
}

// endpoint formats a wire end as "Label.Pin (kind)".
func endpoint(g *circuit.Graph, componentID, pinID string) string {
	c, ok := g.Component(componentID)
	if !ok {
		return componentID + "." + pinID
	}
	spec := c.Spec()
	name := pinID
	for _, p := range spec.Pins {
		if p.ID == pinID {
			if p.Name != "" {
				name = p.Name
			}
			return fmt.Sprintf("%s.%s (%s)", spec.Label, name, p.Kind)
		}
	}
	return fmt.Sprintf("%s.%s", spec.Label, name)
}
