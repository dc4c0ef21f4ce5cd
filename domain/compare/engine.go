package compare

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Breezyryu/batter/domain/core"
	"github.com/Breezyryu/batter/domain/cycle"
)

// Engine performs tolerance-aware structural comparison of two CycleRow
// tables assumed to represent the same underlying cycles.
type Engine struct {
	tolerances ToleranceSpec
	columns    []Column
}

// NewEngine creates an engine with the given tolerance spec; a nil spec
// falls back to the legacy defaults.
func NewEngine(tolerances ToleranceSpec) *Engine {
	if tolerances == nil {
		tolerances = DefaultTolerances()
	}
	return &Engine{tolerances: tolerances, columns: Columns()}
}

// Compare checks a candidate table against a reference table plus the two
// run-level reference capacities. Same row count and cycle numbering are a
// precondition; violating it is a shape-mismatch error, rows are never
// silently truncated.
//
// Cell semantics, per column under the configured tolerance:
//   - both values NaN: exact match
//   - exactly one NaN: mismatch regardless of tolerance (infinite deviation)
//   - otherwise: |ref-cand| == 0 is exact, <= tolerance is within tolerance
func (e *Engine) Compare(refCap, candCap float64, ref, cand []cycle.CycleRow) (*Verdict, error) {
	if len(ref) != len(cand) {
		return nil, core.NewShapeMismatchError(len(ref), len(cand))
	}
	for i := range ref {
		if ref[i].CycleNumber != cand[i].CycleNumber {
			return nil, fmt.Errorf("%w: row %d cycle number %d vs %d",
				core.ErrShapeMismatch, i, ref[i].CycleNumber, cand[i].CycleNumber)
		}
	}

	capTol := e.tolerances.For(TagCapacity)
	capMatch := math.Abs(refCap-candCap) <= capTol

	type columnAccum struct {
		deviations []float64 // finite deviations only
		matches    int
		total      int
	}
	accum := make(map[string]*columnAccum, len(e.columns))
	for _, col := range e.columns {
		accum[col.Key] = &columnAccum{}
	}

	var mismatched []int
	exactRows := 0
	withinRows := 0

	for i := range ref {
		rowExact := true
		rowWithin := true

		for _, col := range e.columns {
			a := accum[col.Key]
			v1 := col.Get(ref[i])
			v2 := col.Get(cand[i])

			// Both undefined counts as a match but contributes no
			// deviation, so MAE and MaxDev reflect numeric cells only.
			if math.IsNaN(v1) && math.IsNaN(v2) {
				a.matches++
				a.total++
				continue
			}
			if math.IsNaN(v1) || math.IsNaN(v2) {
				a.total++
				rowExact = false
				rowWithin = false
				continue
			}

			dev := math.Abs(v1 - v2)
			tol := e.tolerances.For(col.Tag)
			a.deviations = append(a.deviations, dev)
			a.total++
			if dev <= tol {
				a.matches++
			} else {
				rowWithin = false
			}
			if dev != 0 {
				rowExact = false
			}
		}

		if rowExact {
			exactRows++
		}
		if rowWithin {
			withinRows++
		} else {
			mismatched = append(mismatched, i)
		}
	}

	perColumn := make(map[string]ColumnStats, len(e.columns))
	var allDeviations []float64
	for key, a := range accum {
		cs := ColumnStats{Matches: a.matches, Total: a.total}
		if a.total > 0 {
			cs.MatchFraction = float64(a.matches) / float64(a.total)
		} else {
			cs.MatchFraction = 1.0
		}
		if len(a.deviations) > 0 {
			mae, err := stats.Mean(a.deviations)
			if err != nil {
				return nil, fmt.Errorf("column %s mean deviation: %w", key, err)
			}
			maxDev, err := stats.Max(a.deviations)
			if err != nil {
				return nil, fmt.Errorf("column %s max deviation: %w", key, err)
			}
			cs.MAE = sanitize(mae)
			cs.MaxDev = sanitize(maxDev)
			allDeviations = append(allDeviations, a.deviations...)
		}
		perColumn[key] = cs
	}

	verdict := &Verdict{
		TotalRows:       len(ref),
		ExactMatches:    exactRows,
		WithinTolerance: withinRows,
		CapacityRef:     refCap,
		CapacityCand:    candCap,
		CapacityMatch:   capMatch,
		PerColumn:       perColumn,
		MismatchedRows:  mismatched,
	}
	if len(allDeviations) > 0 {
		mae, _ := stats.Mean(allDeviations)
		maxDev, _ := stats.Max(allDeviations)
		verdict.MeanAbsError = sanitize(mae)
		verdict.MaxDeviation = sanitize(maxDev)
	}
	verdict.Passed = capMatch && withinRows == len(ref)
	verdict.Message = verdict.describe()
	return verdict, nil
}
