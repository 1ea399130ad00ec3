// Command vault solves the arithmetic-expression-search vault puzzle:
// find the shortest path of rooms/operators from start to goal whose
// accumulated expression reaches a target weight. It is a standalone
// problem solver, outside the VM core.
//
// The puzzle's room layout is supplied as JSON rather than hard-coded,
// so the same binary works against any guest image's vault layout.
package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"synacor/internal/cliutil"
	"synacor/internal/vault"
)

// layout is the on-disk shape of the --grid JSON file.
type layout struct {
	Cells        []vault.Cell        `json:"cells"`
	Edges        map[string][]string `json:"edges"`
	Start        string              `json:"start"`
	Goal         string              `json:"goal"`
	StartWeight  int                 `json:"start_weight"`
	TargetWeight int                 `json:"target_weight"`
	MaxWeight    int                 `json:"max_weight"`
}

func main() {
	log := cliutil.NewLogger()

	var gridPath string

	root := &cobra.Command{
		Use:   "vault",
		Short: "Solve the vault arithmetic-expression path puzzle",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(gridPath)
			if err != nil {
				log.WithError(err).Error("open grid")
				return err
			}
			defer f.Close()

			var l layout
			if err := json.NewDecoder(f).Decode(&l); err != nil {
				log.WithError(err).Error("decode grid")
				return err
			}

			cells := make(map[string]vault.Cell, len(l.Cells))
			for _, c := range l.Cells {
				cells[c.ID] = c
			}

			path := vault.Solve(vault.Grid{
				Cells:        cells,
				Edges:        l.Edges,
				Start:        l.Start,
				Goal:         l.Goal,
				StartWeight:  l.StartWeight,
				TargetWeight: l.TargetWeight,
				MaxWeight:    l.MaxWeight,
			})

			if path == nil {
				cmd.Println("no path found")
				return nil
			}
			for _, step := range path {
				cmd.Println(step)
			}
			return nil
		},
	}

	root.Flags().StringVar(&gridPath, "grid", "vault.json", "path to the vault room graph, as JSON")

	cliutil.Execute(root)
}
