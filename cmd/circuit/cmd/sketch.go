package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/circuitsim/pkg/codegen"
)

var sketchOutput string

var sketchCmd = &cobra.Command{
	Use:   "sketch <input>",
	Short: "Generate an Arduino sketch for the circuit",
	Long: `Generate an Arduino sketch (.ino) that drives every component wired to
the board. Without -o the sketch is printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runSketch,
}

func init() {
	rootCmd.AddCommand(sketchCmd)
	sketchCmd.Flags().StringVarP(&sketchOutput, "output", "o", "", "output file")
}

func runSketch(cmd *cobra.Command, args []string) error {
	g, snap, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	src, err := codegen.GenerateSketch(g, circuitName(args[0], snap))
	if err != nil {
		return err
	}

	if sketchOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), src)
		return nil
	}
	if err := os.WriteFile(sketchOutput, []byte(src), 0644); err != nil {
		return fmt.Errorf("write %s: %w", sketchOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", sketchOutput)
	return nil
}
