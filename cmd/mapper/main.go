// Command mapper walks the dungeon room graph embedded in a memory
// dump and emits Graphviz.
package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/mapstore"
	"synacor/internal/vm"
)

func main() {
	log := cliutil.NewLogger()

	var rootFlags []string

	root := &cobra.Command{
		Use:   "mapper <dumpfile>",
		Short: "Emit a Graphviz map of the dungeon room graph in a memory dump",
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

			entries, err := parseRoots(rootFlags)
			if err != nil {
				log.WithError(err).Error("parse --root")
				return err
			}
			if len(entries) == 0 {
				// foothills/headquarters/beach: the three entry points a
				// fresh playthrough reaches first, kept as defaults.
				entries = []vm.Word{0x090D, 0x09B8, 0x09C2}
			}

			var rooms []mapstore.Room
			for _, e := range entries {
				rooms = append(rooms, mapstore.WalkGraph(image, e)...)
			}

			mapstore.WriteDot(os.Stdout, rooms)
			return nil
		},
	}

	root.Flags().StringSliceVar(&rootFlags, "root", nil,
		"hex room offsets to start the walk from (defaults to the known foothills/HQ/beach roots)")

	cliutil.Execute(root)
}

func parseRoots(flags []string) ([]vm.Word, error) {
	out := make([]vm.Word, 0, len(flags))
	for _, s := range flags {
		n, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, err
		}
		out = append(out, vm.Word(n))
	}
	return out, nil
}
