// Command teleport brute-forces the eighth-register calibration value
// that makes the teleporter's confirmation routine return a fixed
// result. A standalone problem solver, outside the VM core.
package main

import (
	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/teleport"
)

func main() {
	var want uint16

	root := &cobra.Command{
		Use:   "teleport",
		Short: "Brute-force the teleporter confirmation routine's calibration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			x, ok := teleport.FindCalibration(want)
			if !ok {
				cmd.Println("no calibration value found in range")
				return nil
			}
			cmd.Printf("%d\n", x)
			return nil
		},
	}

	root.Flags().Uint16Var(&want, "want", 6, "expected result of check(4, 1, x)")

	cliutil.Execute(root)
}
