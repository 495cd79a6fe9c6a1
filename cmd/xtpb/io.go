package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// panelColumns holds the raw observation columns of a panel CSV in file
// order: unit identifier, time stamp, dependent variable, and the regressor
// block.
type panelColumns struct {
	header []string
	ids    []string
	times  []float64
	y      []float64
	x      *mat.Dense
	names  []string
}

// loadPanelCSV reads a panel file with header row unit,time,y,<regressors>.
func loadPanelCSV(path string) (*panelColumns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 4 {
		return nil, fmt.Errorf("%s: need unit, time, dependent, and at least one regressor column; got %d columns", path, len(header))
	}
	k := len(header) - 3

	cols := &panelColumns{
		header: header,
		names:  header[3:],
	}
	var xdata []float64
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", row+2, len(header), len(record))
		}

		cols.ids = append(cols.ids, record[0])
		ts, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse time %q: %w", row+2, record[1], err)
		}
		cols.times = append(cols.times, ts)
		yv, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse %s %q: %w", row+2, header[2], record[2], err)
		}
		cols.y = append(cols.y, yv)
		for j := 0; j < k; j++ {
			xv, err := strconv.ParseFloat(record[3+j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse %s %q: %w", row+2, header[3+j], record[3+j], err)
			}
			xdata = append(xdata, xv)
		}
		row++
	}
	if row == 0 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}
	cols.x = mat.NewDense(row, k, xdata)
	return cols, nil
}

// writeAugmentedCSV copies the input rows and appends the long-run gap and
// short-run residual columns, in the original row order.
func writeAugmentedCSV(path string, cols *panelColumns, gap, resid []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append(append([]string(nil), cols.header...), "lr_gap", "sr_resid")
	if err := w.Write(header); err != nil {
		return err
	}
	_, k := cols.x.Dims()
	for i := range cols.ids {
		record := make([]string, 0, len(header))
		record = append(record,
			cols.ids[i],
			strconv.FormatFloat(cols.times[i], 'g', -1, 64),
			strconv.FormatFloat(cols.y[i], 'g', -1, 64),
		)
		for j := 0; j < k; j++ {
			record = append(record, strconv.FormatFloat(cols.x.At(i, j), 'g', -1, 64))
		}
		record = append(record,
			strconv.FormatFloat(gap[i], 'g', -1, 64),
			strconv.FormatFloat(resid[i], 'g', -1, 64),
		)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
