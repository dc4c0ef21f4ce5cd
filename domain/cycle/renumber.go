package cycle

import "github.com/Breezyryu/batter/domain/core"

// Renumber re-indexes cycle numbers so the first discharge step becomes
// cycle 1. Steps before the first discharge are dropped from the renumbered
// sequence; every surviving step keeps its original cycle index in
// OriginalCycle for provenance. Subsequent distinct original cycle indices
// map onto strictly increasing numbers in order of first appearance.
//
// A run with no discharge step at all is a fatal condition: the whole run
// aborts with core.ErrNoDischargeFound and no partial output.
func Renumber(steps []MergedStep) ([]MergedStep, error) {
	first := -1
	for i, s := range steps {
		if s.Condition == ConditionDischarge {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, core.ErrNoDischargeFound
	}

	renumbered := make([]MergedStep, 0, len(steps)-first)
	assigned := make(map[int]int)
	next := 1
	for _, s := range steps[first:] {
		num, ok := assigned[s.OriginalCycle]
		if !ok {
			num = next
			assigned[s.OriginalCycle] = num
			next++
		}
		s.CycleIndex = num
		renumbered = append(renumbered, s)
	}
	return renumbered, nil
}
