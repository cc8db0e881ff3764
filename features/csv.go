package features

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Noofbiz/rabani"
	"github.com/Noofbiz/rabani/records"
	"github.com/pkg/errors"
)

var header = []string{"index", "label", "heuristic", "SIA", "SIP", "SIE"}

// WriteCSV writes rows with a header line. params names the trailing
// parameter columns, one per entry of Row.Params.
func WriteCSV(w io.Writer, rows []Row, params []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, header...), params...)); err != nil {
		return err
	}
	for _, r := range rows {
		if len(r.Params) != len(params) {
			return errors.Wrapf(rabani.ErrPrecondition,
				"features: row %d has %d parameters, header names %d", r.Index, len(r.Params), len(params))
		}
		rec := []string{
			strconv.Itoa(r.Index),
			r.Truth.String(),
			r.Heuristic.String(),
			formatFloat(r.SIA),
			formatFloat(r.SIP),
			formatFloat(r.SIE),
		}
		for _, v := range r.Params {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV and returns its rows and the
// names of its parameter columns.
func ReadCSV(r io.Reader) ([]Row, []string, error) {
	cr := csv.NewReader(r)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(rabani.ErrPrecondition, err.Error())
	}
	if len(lines) == 0 || len(lines[0]) < len(header) {
		return nil, nil, errors.Wrap(rabani.ErrPrecondition, "features: missing csv header")
	}
	for i, h := range header {
		if lines[0][i] != h {
			return nil, nil, errors.Wrapf(rabani.ErrPrecondition, "features: column %d is %q, want %q", i, lines[0][i], h)
		}
	}
	params := lines[0][len(header):]

	rows := make([]Row, 0, len(lines)-1)
	for n, line := range lines[1:] {
		row, err := parseRow(line, len(params))
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "features: csv line %d", n+2)
		}
		rows = append(rows, row)
	}
	return rows, params, nil
}

func parseRow(line []string, numParams int) (Row, error) {
	var row Row
	var err error
	if row.Index, err = strconv.Atoi(line[0]); err != nil {
		return row, errors.Wrap(rabani.ErrPrecondition, err.Error())
	}
	if row.Truth, err = records.ParseCategory(line[1]); err != nil {
		return row, err
	}
	if row.Heuristic, err = records.ParseCategory(line[2]); err != nil {
		return row, err
	}
	for i, dst := range []*float64{&row.SIA, &row.SIP, &row.SIE} {
		if *dst, err = strconv.ParseFloat(line[3+i], 64); err != nil {
			return row, errors.Wrap(rabani.ErrPrecondition, err.Error())
		}
	}
	row.Params = make([]float64, numParams)
	for i := range row.Params {
		if row.Params[i], err = strconv.ParseFloat(line[len(header)+i], 64); err != nil {
			return row, errors.Wrap(rabani.ErrPrecondition, err.Error())
		}
	}
	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
