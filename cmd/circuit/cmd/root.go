package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/circuitfile"
)

var (
	// Global flags
	verbose bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "circuit",
	Short: "Arduino circuit toolkit",
	Long: `Validate, inspect, render, convert and program saved breadboard circuits.

Examples:
  circuit validate blink.json              # Run the circuit checks
  circuit info blink.json                  # Show components and wires
  circuit render blink.json -o blink.png   # Draw the circuit
  circuit convert blink.json -o blink.yaml # Change file format
  circuit sketch blink.json -o blink.ino   # Generate an Arduino sketch
  circuit catalog                          # List component types`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadCircuit reads a circuit file and logs what was loaded.
func loadCircuit(path string) (*circuit.Graph, *circuitfile.Snapshot, error) {
	g, snap, err := circuitfile.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug("circuit loaded",
		zap.String("path", path),
		zap.String("version", snap.Version),
		zap.Int("components", g.Len()),
		zap.Int("wires", g.WireCount()),
	)
	return g, snap, nil
}

// circuitName picks a display name for a loaded circuit.
func circuitName(path string, snap *circuitfile.Snapshot) string {
	if snap != nil && snap.Name != "" {
		return snap.Name
	}
	return circuitfile.NameFromPath(path)
}
