// Package topology computes topological statistics of level images: connected
// components, the Euler number, perimeters, a heuristic morphology category
// and the scale-invariant descriptors SIA, SIP and SIE.
//
// Masks are row-major []bool slices of width*height pixels. Images are
// *images.Image values holding the raw discrete levels.
package topology
