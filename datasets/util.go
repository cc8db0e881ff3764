package datasets

import (
	"math/rand/v2"
	"time"
)

// newSource returns the PCG source every random draw of a generator comes
// from. A zero seed is replaced by the current time.
func newSource(seed uint64) *rand.PCG {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
