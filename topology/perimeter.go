package topology

import "math"

// Perimeter estimates the total perimeter of every foreground region of mask.
//
// Border pixels are the foreground pixels removed by an erosion with the
// 4-neighborhood cross. Each border pixel is weighted by the configuration of
// its 3×3 neighborhood of border pixels: straight runs count 1, diagonal
// steps √2 and corners (1+√2)/2.
func Perimeter(mask []bool, width, height int) float64 {
	eroded := erodeCross(mask, width, height)
	border := make([]bool, len(mask))
	for i := range mask {
		border[i] = mask[i] && !eroded[i]
	}

	var total float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !border[y*width+x] {
				continue
			}
			code := 1
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height || !border[ny*width+nx] {
						continue
					}
					if dx != 0 && dy != 0 {
						code += 10
					} else {
						code += 2
					}
				}
			}
			total += perimeterWeight(code)
		}
	}
	return total
}

func perimeterWeight(code int) float64 {
	switch code {
	case 5, 7, 15, 17, 25, 27:
		return 1
	case 21, 33:
		return math.Sqrt2
	case 13, 23:
		return (1 + math.Sqrt2) / 2
	}
	return 0
}
