// Command play runs an interactive REPL with debugging over a
// Synacor-architecture image.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/disasm"
	"synacor/internal/runner"
	"synacor/internal/vm"
)

func main() {
	log := cliutil.NewLogger()

	var codeEnd uint16

	root := &cobra.Command{
		Use:   "play <image>",
		Short: "Run a Synacor-architecture image under an interactive debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				log.WithError(err).Error("open image")
				return err
			}
			image, err := vm.LoadImage(f)
			f.Close()
			if err != nil {
				log.WithError(err).Error("load image")
				return err
			}

			r, err := runner.New(image, vm.Word(codeEnd), log)
			if err != nil {
				log.WithError(err).Error("start runner")
				return err
			}
			defer r.Close()

			return r.Run()
		},
	}

	root.Flags().Uint16Var(&codeEnd, "code-end", uint16(disasm.DefaultCodeEnd),
		"offset at which the code region ends and data begins")

	cliutil.Execute(root)
}
