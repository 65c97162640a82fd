// Command circuit is a CLI tool for working with saved circuits.
package main

import "github.com/ha1tch/circuitsim/cmd/circuit/cmd"

func main() {
	cmd.Execute()
}
