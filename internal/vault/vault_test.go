package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveFindsShortestPath(t *testing.T) {
	g := Grid{
		Cells: map[string]Cell{
			"start": {ID: "start", Value: 22},
			"plus":  {ID: "plus", IsOp: true, Op: "+"},
			"nine":  {ID: "nine", Value: 9},
			"goal":  {ID: "goal", Value: 30},
		},
		Edges: map[string][]string{
			"start": {"plus"},
			"plus":  {"nine"},
			"nine":  {"goal"},
		},
		Start:        "start",
		Goal:         "goal",
		StartWeight:  22,
		TargetWeight: 31,
		MaxWeight:    0x7FFF,
	}

	path := Solve(g)
	require.NotNil(t, path)
	assert.Equal(t, []string{"start", "plus", "nine", "goal"}, path)
}

func TestSolveReturnsNilWhenUnreachable(t *testing.T) {
	g := Grid{
		Cells: map[string]Cell{
			"start": {ID: "start", Value: 1},
			"goal":  {ID: "goal", Value: 2},
		},
		Edges:        map[string][]string{},
		Start:        "start",
		Goal:         "goal",
		TargetWeight: 99,
		MaxWeight:    0x7FFF,
	}

	assert.Nil(t, Solve(g))
}
