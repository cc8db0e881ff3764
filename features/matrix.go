package features

import (
	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix converts the rows whose ground truth is in cats into an n×3 design
// matrix of (SIA, SIP, SIE) and the matching label indices into cats.
func Matrix(rows []Row, cats []records.Category) (*mat.Dense, []int, error) {
	rows = Filter(rows, cats)
	if len(rows) == 0 {
		return nil, nil, errors.Wrapf(rabani.ErrPrecondition, "features: no rows labeled %v", cats)
	}
	x := mat.NewDense(len(rows), 3, nil)
	y := make([]int, len(rows))
	for i, r := range rows {
		x.SetRow(i, []float64{r.SIA, r.SIP, r.SIE})
		y[i], _ = records.IndexOf(cats, r.Truth)
	}
	return x, y, nil
}

// Confusion counts ground truth (rows) against heuristic category (columns)
// for the categories in cats. The extra last column counts heuristic
// categories outside cats, records.None included.
func Confusion(rows []Row, cats []records.Category) *mat.Dense {
	m := mat.NewDense(len(cats), len(cats)+1, nil)
	for _, r := range rows {
		i, err := records.IndexOf(cats, r.Truth)
		if err != nil {
			continue
		}
		j, err := records.IndexOf(cats, r.Heuristic)
		if err != nil {
			j = len(cats)
		}
		m.Set(i, j, m.At(i, j)+1)
	}
	return m
}

// Agreement returns the fraction of rows whose heuristic category matches the
// ground truth.
func Agreement(rows []Row) float64 {
	if len(rows) == 0 {
		return 0
	}
	var n int
	for _, r := range rows {
		if r.Truth == r.Heuristic {
			n++
		}
	}
	return float64(n) / float64(len(rows))
}
