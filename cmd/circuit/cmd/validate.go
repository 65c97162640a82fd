package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/circuitsim/pkg/sim"
)

var validateJSON bool

var errCheckFailed = errors.New("circuit check failed")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Run the circuit checks on a saved circuit",
	Long: `Load a circuit and run the same checks as the editor's "Test Circuit"
button. Exits with status 1 when the circuit does not run.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the full result as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	g, _, err := loadCircuit(args[0])
	if err != nil {
		return err
	}
	res := sim.NewEngine(sim.WithLogger(logger)).Evaluate(g)

	out := cmd.OutOrStdout()
	if validateJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "Status:  %s\n", res.Status)
		fmt.Fprintf(out, "Message: %s\n", res.Message)
		for _, p := range res.Pins {
			fmt.Fprintf(out, "  Pin %-4s %s\n", p.Name, p.Level)
		}
		for _, line := range res.Serial {
			fmt.Fprintf(out, "  > %s\n", line)
		}
	}

	if !res.Running() {
		return fmt.Errorf("%w: %s", errCheckFailed, res.Message)
	}
	return nil
}
