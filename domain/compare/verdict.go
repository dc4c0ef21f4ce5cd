package compare

import (
	"fmt"
	"math"
)

// ColumnStats aggregates one column's deviations across all rows.
// Infinite deviations (one-sided nulls) are excluded from MAE and MaxDev
// but still count against MatchFraction.
type ColumnStats struct {
	MAE           float64 `json:"mae"`
	MaxDev        float64 `json:"max_dev"`
	MatchFraction float64 `json:"match_fraction"`
	Matches       int     `json:"matches"`
	Total         int     `json:"total"`
}

// Verdict is the structured outcome of one table comparison. It is created
// once per comparison call and read-only thereafter.
type Verdict struct {
	TotalRows       int                    `json:"total_rows"`
	ExactMatches    int                    `json:"exact_matches"`
	WithinTolerance int                    `json:"within_tolerance"`
	MaxDeviation    float64                `json:"max_deviation"`
	MeanAbsError    float64                `json:"mean_absolute_error"`
	CapacityRef     float64                `json:"capacity_reference"`
	CapacityCand    float64                `json:"capacity_candidate"`
	CapacityMatch   bool                   `json:"capacity_match"`
	PerColumn       map[string]ColumnStats `json:"per_column"`
	MismatchedRows  []int                  `json:"mismatched_row_indices"`
	Passed          bool                   `json:"passed"`
	Message         string                 `json:"message"`
}

// Flatten serializes the verdict to a flat key-value structure for logging
// and export. Field names are stable across implementations.
func (v *Verdict) Flatten() map[string]interface{} {
	out := map[string]interface{}{
		"summary.passed":              v.Passed,
		"summary.message":             v.Message,
		"summary.exact_matches":       v.ExactMatches,
		"summary.within_tolerance":    v.WithinTolerance,
		"summary.total_comparisons":   v.TotalRows,
		"summary.match_percentage":    fmt.Sprintf("%.2f%%", v.matchPercentage()),
		"summary.max_deviation":       v.MaxDeviation,
		"summary.mean_absolute_error": v.MeanAbsError,
		"capacity.reference":          v.CapacityRef,
		"capacity.candidate":          v.CapacityCand,
		"capacity.match":              v.CapacityMatch,
		"mismatched_rows":             v.MismatchedRows,
	}
	for key, stats := range v.PerColumn {
		out["column."+key+".mae"] = stats.MAE
		out["column."+key+".max_dev"] = stats.MaxDev
		out["column."+key+".match_fraction"] = stats.MatchFraction
	}
	return out
}

func (v *Verdict) matchPercentage() float64 {
	if v.TotalRows == 0 {
		return 100.0
	}
	return float64(v.WithinTolerance) / float64(v.TotalRows) * 100.0
}

// describe builds the human-readable result message.
func (v *Verdict) describe() string {
	switch {
	case v.Passed:
		return fmt.Sprintf("PASSED: all %d rows within tolerance", v.TotalRows)
	case !v.CapacityMatch:
		return fmt.Sprintf("FAILED: capacity mismatch (reference=%.2f, candidate=%.2f)",
			v.CapacityRef, v.CapacityCand)
	default:
		return fmt.Sprintf("FAILED: %d / %d rows exceed tolerance",
			len(v.MismatchedRows), v.TotalRows)
	}
}

// sanitize replaces non-finite aggregates so the verdict stays serializable.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
