// Command ida disassembles a Synacor-architecture image and prints it.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/disasm"
	"synacor/internal/vm"
)

func main() {
	log := cliutil.NewLogger()

	var codeEnd uint16

	root := &cobra.Command{
		Use:   "ida <image>",
		Short: "Disassemble a Synacor-architecture bytecode image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				log.WithError(err).Error("open image")
				return err
			}
			defer f.Close()

			image, err := vm.LoadImage(f)
			if err != nil {
				log.WithError(err).Error("load image")
				return err
			}

			disasm.Disassemble(os.Stdout, image, vm.Word(codeEnd))
			return nil
		},
	}

	root.Flags().Uint16Var(&codeEnd, "code-end", uint16(disasm.DefaultCodeEnd),
		"offset at which the code region ends and data begins")

	cliutil.Execute(root)
}
