package images

import "github.com/disintegration/imaging"

// FlipRows reverses the row order of the res x res image stored in pix
// (an up-down flip), writing the result back into pix.
func FlipRows(pix []float32, res int) error {
	gray, palette, err := toGray(pix, res)
	if err != nil {
		return err
	}
	fromNRGBA(pix, imaging.FlipV(gray), palette)
	return nil
}

// FlipCols reverses the pixel order inside every row (a left-right flip).
func FlipCols(pix []float32, res int) error {
	gray, palette, err := toGray(pix, res)
	if err != nil {
		return err
	}
	fromNRGBA(pix, imaging.FlipH(gray), palette)
	return nil
}

// Roll shifts the image toroidally by dy rows and dx columns: the pixel at
// (x, y) moves to ((x+dx) mod res, (y+dy) mod res).
func Roll(pix []float32, res, dy, dx int) {
	dy = ((dy % res) + res) % res
	dx = ((dx % res) + res) % res
	if dy == 0 && dx == 0 {
		return
	}
	src := make([]float32, len(pix))
	copy(src, pix)
	for y := 0; y < res; y++ {
		dstRow := pix[((y+dy)%res)*res:]
		srcRow := src[y*res : (y+1)*res]
		for x, v := range srcRow {
			dstRow[(x+dx)%res] = v
		}
	}
}
