package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/circuitsim/pkg/circuitfile"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert between formats (json, yaml)",
	Long: `Convert a circuit between JSON and YAML. Without -o the output is the
input name with the other extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file (.json, .yaml or .yml)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	g, snap, err := loadCircuit(input)
	if err != nil {
		return err
	}

	output := convertOutput
	if output == "" {
		// Default: swap the extension
		ext := filepath.Ext(input)
		base := strings.TrimSuffix(input, ext)
		switch strings.ToLower(ext) {
		case ".json":
			output = base + ".yaml"
		default:
			output = base + ".json"
		}
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return fmt.Errorf("output %s would overwrite the input", output)
	}

	if err := circuitfile.WriteFile(output, g, snap.Name); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", output)
	return nil
}
