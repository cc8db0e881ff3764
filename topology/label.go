package topology

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)

var (
	offsets4 = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	offsets8 = [][2]int{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
)

func (c Connectivity) offsets() [][2]int {
	if c == Conn8 {
		return offsets8
	}
	return offsets4
}

// Label assigns a component label to every true pixel of mask, which is
// width*height pixels in row-major order. Labels run from 1 to n in raster
// order of each component's first pixel; false pixels are labeled 0.
//
// Time:   O(W·H·d), where d = 4 or 8.
// Memory: O(W·H).
func Label(mask []bool, width, height int, conn Connectivity) (labels []int, n int) {
	labels = make([]int, width*height)
	offsets := conn.offsets()
	queue := make([]int, 0, width*height)

	for i0, on := range mask {
		if !on || labels[i0] != 0 {
			continue
		}
		n++
		labels[i0] = n
		queue = append(queue[:0], i0)
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			ux, uy := u%width, u/width
			for _, d := range offsets {
				vx, vy := ux+d[0], uy+d[1]
				if vx < 0 || vy < 0 || vx >= width || vy >= height {
					continue
				}
				vi := vy*width + vx
				if mask[vi] && labels[vi] == 0 {
					labels[vi] = n
					queue = append(queue, vi)
				}
			}
		}
	}
	return labels, n
}

// CountComponents returns the number of connected components of mask.
func CountComponents(mask []bool, width, height int, conn Connectivity) int {
	_, n := Label(mask, width, height, conn)
	return n
}

// Area returns the number of true pixels of mask.
func Area(mask []bool) int {
	var n int
	for _, on := range mask {
		if on {
			n++
		}
	}
	return n
}

// Invert returns the logical complement of mask.
func Invert(mask []bool) []bool {
	out := make([]bool, len(mask))
	for i, on := range mask {
		out[i] = !on
	}
	return out
}
