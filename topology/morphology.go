package topology

// Close applies a morphological closing with a 3×3 square to a res×res mask:
// a dilation followed by an erosion. Pixels outside the image take the value of
// the nearest edge pixel.
func Close(mask []bool, res int) []bool {
	return filter3x3(filter3x3(mask, res, true), res, false)
}

// filter3x3 computes, for each pixel, whether any (dilate) or every (!dilate)
// pixel of its clamped 3×3 neighborhood is set.
func filter3x3(mask []bool, res int, dilate bool) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			v := !dilate
			for dy := -1; dy <= 1 && v == !dilate; dy++ {
				ny := min(max(y+dy, 0), res-1)
				for dx := -1; dx <= 1; dx++ {
					nx := min(max(x+dx, 0), res-1)
					if mask[ny*res+nx] == dilate {
						v = dilate
						break
					}
				}
			}
			out[y*res+x] = v
		}
	}
	return out
}

// erodeCross erodes mask with the 4-neighborhood cross. Pixels outside the
// image count as unset, so foreground touching the edge is eroded.
func erodeCross(mask []bool, width, height int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !mask[i] {
				continue
			}
			keep := true
			for _, d := range offsets4 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height || !mask[ny*width+nx] {
					keep = false
					break
				}
			}
			out[i] = keep
		}
	}
	return out
}

// pad surrounds mask with a one pixel unset border.
func pad(mask []bool, width, height int) []bool {
	w := width + 2
	out := make([]bool, w*(height+2))
	for y := 0; y < height; y++ {
		copy(out[(y+1)*w+1:], mask[y*width:(y+1)*width])
	}
	return out
}
