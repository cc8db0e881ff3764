package topology

// EulerNumber returns the Euler characteristic of mask: the number of
// 8-connected foreground components minus the number of holes, a hole being a
// 4-connected background component that does not reach the image border.
func EulerNumber(mask []bool, width, height int) int {
	objects := CountComponents(mask, width, height, Conn8)

	// After padding every background pixel reaching the border joins a single
	// outer component, all others are holes.
	padded := pad(mask, width, height)
	background := CountComponents(Invert(padded), width+2, height+2, Conn4)
	return objects - (background - 1)
}
