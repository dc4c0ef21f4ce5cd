package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Breezyryu/batter/domain/compare"
	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/internal/testkit"
)

func TestComparisonService_IdenticalSourcesPass(t *testing.T) {
	records := testkit.GenerateCyclePairs(20, testkit.DefaultPairSpec())
	reference := &testkit.Source{CapacityMAh: 1689, Records: records}
	candidate := &testkit.Source{CapacityMAh: 1689, Records: records}

	service := NewComparisonService(NewAnalysisService(nil), nil)
	verdict, err := service.ComparePair(context.Background(), reference, candidate, cycle.RunConfig{}, nil)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	assert.True(t, verdict.Passed, verdict.Message)
	assert.Equal(t, verdict.TotalRows, verdict.ExactMatches)
	assert.Equal(t, 20, verdict.TotalRows)
}

func TestComparisonService_DivergentCandidateFails(t *testing.T) {
	spec := testkit.DefaultPairSpec()
	drifted := spec
	drifted.DischargeMAh = spec.DischargeMAh - 400 // far past the capacity tolerance

	reference := &testkit.Source{CapacityMAh: 1689, Records: testkit.GenerateCyclePairs(10, spec)}
	candidate := &testkit.Source{CapacityMAh: 1689, Records: testkit.GenerateCyclePairs(10, drifted)}

	service := NewComparisonService(NewAnalysisService(nil), nil)
	verdict, err := service.ComparePair(context.Background(), reference, candidate, cycle.RunConfig{}, nil)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	assert.False(t, verdict.Passed)
	assert.NotEmpty(t, verdict.MismatchedRows)
	assert.Greater(t, verdict.MaxDeviation, compare.DefaultTolerances()[compare.TagCapacity])
}

func TestComparisonService_CapacityMismatchFails(t *testing.T) {
	records := testkit.GenerateCyclePairs(5, testkit.DefaultPairSpec())
	reference := &testkit.Source{CapacityMAh: 1689, Records: records}
	candidate := &testkit.Source{CapacityMAh: 1700, Records: records}

	service := NewComparisonService(NewAnalysisService(nil), nil)
	verdict, err := service.ComparePair(context.Background(), reference, candidate, cycle.RunConfig{}, nil)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	assert.False(t, verdict.Passed)
	assert.False(t, verdict.CapacityMatch)
}
