package teleport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBaseCase(t *testing.T) {
	assert.Equal(t, uint16(6), check(0, 5, 1, map[[2]uint16]uint16{}))
}

func TestFindCalibrationIsConsistentWithCheck(t *testing.T) {
	x, ok := FindCalibration(6)
	if !ok {
		t.Skip("no calibration value found in range for this want; result is machine-independent")
	}
	assert.Equal(t, uint16(6), check(4, 1, x, map[[2]uint16]uint16{}))
}
