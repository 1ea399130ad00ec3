// Command vm loads a Synacor-architecture image and runs it to
// completion with no debugger attached.
package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/vm"
)

type stdoutByte struct{ w *bufio.Writer }

func (s stdoutByte) WriteByte(b byte) error {
	err := s.w.WriteByte(b)
	s.w.Flush()
	return err
}

func main() {
	log := cliutil.NewLogger()

	root := &cobra.Command{
		Use:   "vm <image>",
		Short: "Load and run a Synacor-architecture bytecode image",
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

			out := stdoutByte{bufio.NewWriter(os.Stdout)}
			target := vm.New(out, bufio.NewReader(os.Stdin))
			target.Load(image)

			for !target.Halted() {
				target.Step()
			}
			if err := target.Err(); err != nil && err != vm.ErrHalted {
				log.WithError(err).Error("vm halted abnormally")
			}
			return nil
		},
	}

	cliutil.Execute(root)
}
