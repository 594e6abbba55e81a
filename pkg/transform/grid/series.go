package grid

import (
	"fmt"
	"strings"
)

// SinglePointPolicy decides what happens to a series with exactly one
// known value, where no slope exists to extrapolate with.
type SinglePointPolicy int

const (
	// SinglePointNull leaves every other year null.
	SinglePointNull SinglePointPolicy = iota
	// SinglePointHold copies the single value to every year.
	SinglePointHold
)

func (p SinglePointPolicy) String() string {
	if p == SinglePointHold {
		return "hold"
	}
	return "null"
}

func ParseSinglePoint(s string) (SinglePointPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null":
		return SinglePointNull, nil
	case "hold":
		return SinglePointHold, nil
	}
	return 0, fmt.Errorf("unknown single-point policy %q (want null|hold)", s)
}

// SeriesStats counts how the nulls of one series were filled.
type SeriesStats struct {
	Known        int
	Interpolated int
	Extrapolated int
	Held         int
	Remaining    int
}

// FillSeries fills ys in place. xs must be strictly ascending and known
// marks which ys hold observations. Interior gaps use the nearest known
// point on each side; leading gaps use the first two known points and
// trailing gaps the last two.
func FillSeries(xs, ys []float64, known []bool, policy SinglePointPolicy) SeriesStats {
	var st SeriesStats
	var idx []int
	for i, ok := range known {
		if ok {
			idx = append(idx, i)
		}
	}
	st.Known = len(idx)
	n := len(xs)
	switch {
	case len(idx) == 0:
		st.Remaining = n
		return st
	case len(idx) == 1:
		if policy != SinglePointHold {
			st.Remaining = n - 1
			return st
		}
		for i := range ys {
			if !known[i] {
				ys[i] = ys[idx[0]]
				known[i] = true
				st.Held++
			}
		}
		return st
	}

	first, last := idx[0], idx[len(idx)-1]
	next := 1 // position in idx of the nearest known point at or after i
	for i := 0; i < n; i++ {
		if known[i] {
			continue
		}
		var a, b int
		switch {
		case i < first:
			a, b = idx[0], idx[1]
			st.Extrapolated++
		case i > last:
			a, b = idx[len(idx)-2], idx[len(idx)-1]
			st.Extrapolated++
		default:
			for idx[next] < i {
				next++
			}
			a, b = idx[next-1], idx[next]
			st.Interpolated++
		}
		ys[i] = ys[a] + (xs[i]-xs[a])*(ys[b]-ys[a])/(xs[b]-xs[a])
	}
	// mark after the loop so every gap is computed from observations only
	for i := range known {
		known[i] = true
	}
	return st
}
