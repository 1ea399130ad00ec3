// Command decipher hunts call sites of a known XOR-string routine and
// recovers the keyed strings it guards.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/decipher"
	"synacor/internal/disasm"
	"synacor/internal/vm"
)

func main() {
	log := cliutil.NewLogger()

	p := decipher.DefaultParams
	var codeEnd uint16
	var callTarget, keyOpA uint16

	root := &cobra.Command{
		Use:   "decipher <dumpfile>",
		Short: "Recover XOR-keyed strings guarded by a fixed CALL pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				log.WithError(err).Error("open dumpfile")
				return err
			}
			defer f.Close()

			image, err := vm.LoadImage(f)
			if err != nil {
				log.WithError(err).Error("load dumpfile")
				return err
			}

			if cmd.Flags().Changed("call-target") {
				p.CallTarget = vm.Word(callTarget)
			}
			if cmd.Flags().Changed("key-op-a") {
				p.KeyOpA = vm.Word(keyOpA)
			}

			found := decipher.Scan(image, vm.Word(codeEnd), p)
			decipher.Write(os.Stdout, found)
			return nil
		},
	}

	root.Flags().Uint16Var(&codeEnd, "code-end", uint16(disasm.DefaultCodeEnd),
		"offset at which the code region ends and data begins")
	root.Flags().Uint16Var(&callTarget, "call-target", uint16(p.CallTarget),
		"CALL target address identifying the decrypt-and-print routine")
	root.Flags().Uint16Var(&keyOpA, "key-op-a", uint16(p.KeyOpA),
		"destination register id of the ADD instruction computing the XOR key")

	cliutil.Execute(root)
}
