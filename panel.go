package xtpb

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Unit is one cross-sectional member of the panel: its identifier, time
// stamps in ascending order, the dependent variable, and the T×k regressor
// block. Units are built once per estimation call and never mutated.
type Unit struct {
	ID    string
	Times []float64
	Y     []float64
	X     *mat.Dense

	// srcRows maps each observation back to its row in the columns the
	// panel was built from, so per-observation output series can be
	// returned in the caller's row order.
	srcRows []int
}

// NumObs returns the unit's observation count T_i.
func (u *Unit) NumObs() int { return len(u.Y) }

// Panel is the ordered collection of units sharing a regressor dimension
// and a lag order.
type Panel struct {
	Units []*Unit
	Names []string // regressor names, length k
	K     int
	Lags  int
}

// N returns the cross-section size.
func (p *Panel) N() int { return len(p.Units) }

// ObsStats reports the minimum, mean, and maximum observations per unit.
func (p *Panel) ObsStats() (min int, avg float64, max int) {
	if len(p.Units) == 0 {
		return 0, 0, 0
	}
	min = p.Units[0].NumObs()
	max = min
	total := 0
	for _, u := range p.Units {
		t := u.NumObs()
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
		total += t
	}
	return min, float64(total) / float64(len(p.Units)), max
}

// BuildPanel groups raw observation columns by unit identifier, orders each
// unit's rows by time, and validates that every unit can support lag order
// p. Units appear in order of first appearance in ids. x must have one row
// per observation and len(names) columns.
//
// A unit with fewer than p+2 observations yields an InsufficientDataError:
// the annihilator needs T_i - p effective rows and the subsequent
// inversions need the extra degree of freedom.
func BuildPanel(ids []string, times, y []float64, x *mat.Dense, names []string, p int) (*Panel, error) {
	n := len(ids)
	if n == 0 {
		return nil, fmt.Errorf("xtpb: empty panel")
	}
	if len(times) != n || len(y) != n {
		return nil, fmt.Errorf("xtpb: column lengths differ: ids=%d times=%d y=%d", n, len(times), len(y))
	}
	rows, k := x.Dims()
	if rows != n {
		return nil, fmt.Errorf("xtpb: regressor matrix has %d rows, want %d", rows, n)
	}
	if k != len(names) {
		return nil, fmt.Errorf("xtpb: %d regressor names for %d columns", len(names), k)
	}
	if p < 1 {
		return nil, &ConfigError{Option: "lag_order", Value: fmt.Sprint(p), Reason: "must be at least 1"}
	}

	// Group row indices by unit, keeping first-appearance order.
	order := make([]string, 0)
	groups := make(map[string][]int)
	for i, id := range ids {
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], i)
	}

	panel := &Panel{Names: append([]string(nil), names...), K: k, Lags: p}
	for _, id := range order {
		idx := groups[id]
		// Stable sort by time so duplicate stamps keep input order.
		sort.SliceStable(idx, func(a, b int) bool { return times[idx[a]] < times[idx[b]] })

		T := len(idx)
		if T < p+2 {
			return nil, &InsufficientDataError{Unit: id, Obs: T, Min: p + 2}
		}

		u := &Unit{
			ID:      id,
			Times:   make([]float64, T),
			Y:       make([]float64, T),
			X:       mat.NewDense(T, k, nil),
			srcRows: idx,
		}
		for t, row := range idx {
			u.Times[t] = times[row]
			u.Y[t] = y[row]
			for j := 0; j < k; j++ {
				u.X.Set(t, j, x.At(row, j))
			}
		}
		panel.Units = append(panel.Units, u)
	}
	return panel, nil
}

// halfSample selects the slice of a unit's observations an estimator call
// operates on.
type halfSample int

const (
	halfFull halfSample = iota
	halfFirst
	halfSecond
)

// halfSpan returns the [lo, hi) row range of a half-sample over T
// observations. With odd T the first half keeps the extra (middle)
// observation: first = [0, ceil(T/2)), second = [ceil(T/2), T).
func halfSpan(T int, h halfSample) (lo, hi int) {
	switch h {
	case halfFirst:
		return 0, (T + 1) / 2
	case halfSecond:
		return (T + 1) / 2, T
	default:
		return 0, T
	}
}

// span materializes a half-sample view of the unit's data. The returned
// slices alias the unit's storage and must not be written.
func (u *Unit) span(h halfSample) (y []float64, x mat.Matrix, T int) {
	lo, hi := halfSpan(u.NumObs(), h)
	_, k := u.X.Dims()
	return u.Y[lo:hi], u.X.Slice(lo, hi, 0, k), hi - lo
}

// clone returns a deep copy with fresh backing storage, used to seed
// synthetic units.
func (u *Unit) clone() *Unit {
	T := u.NumObs()
	_, k := u.X.Dims()
	c := &Unit{
		ID:    u.ID,
		Times: append([]float64(nil), u.Times...),
		Y:     append([]float64(nil), u.Y...),
		X:     mat.NewDense(T, k, nil),
	}
	c.X.Copy(u.X)
	return c
}
