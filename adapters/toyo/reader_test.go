package toyo

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Breezyryu/batter/domain/cycle"
)

func writeChannel(t *testing.T, dir, capacityLog string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "capacity.log"), []byte(capacityLog), 0o644); err != nil {
		t.Fatal(err)
	}
}

const modernLog = `TotlCycle,Condition,Mode,Cap[mAh],Pow[mWh],Ocv,PeakTemp[Deg],Finish
1,2,CC,950.5,3515.2,3.002,25.5,Volt
1,1,CCCV,1000.0,3900.1,4.401,24.8,Cur
2,2,CC,948.0,3502.7,3.001,25.9,Volt
`

const legacyLog = `Total Cycle,Condition,Mode,Capacity[mAh],Power[mWh],OCV[V],Peak Temp.[deg],End Factor
1,2,CC,950.5,3515.2,3.002,25.5,Volt
`

func TestReadCapacityLog_ModernHeaders(t *testing.T) {
	dir := t.TempDir()
	writeChannel(t, dir, modernLog)

	table, err := ReadCapacityLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.ColumnIndex(cycle.ColCycle) < 0 || table.ColumnIndex(cycle.ColCapacity) < 0 {
		t.Fatalf("headers not mapped to canonical names: %v", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}

	records, err := cycle.ParseSteps(table)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if records[0].Condition != cycle.ConditionDischarge || records[0].Capacity != 950.5 {
		t.Errorf("first record: expected discharge 950.5, got %s %v", records[0].Condition, records[0].Capacity)
	}
	if records[1].EndFactor != "Cur" {
		t.Errorf("end factor: expected Cur, got %q", records[1].EndFactor)
	}
}

func TestReadCapacityLog_LegacyHeaders(t *testing.T) {
	dir := t.TempDir()
	writeChannel(t, dir, legacyLog)

	table, err := ReadCapacityLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, col := range []string{cycle.ColCycle, cycle.ColCondition, cycle.ColCapacity, cycle.ColEnergy, cycle.ColVoltageEnd, cycle.ColEndFactor} {
		if table.ColumnIndex(col) < 0 {
			t.Errorf("legacy header not mapped to %q: %v", col, table.Columns)
		}
	}
}

func TestReadCapacityLog_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeChannel(t, dir, modernLog+"garbage,line\n3,2,CC,946.2,3490.0,3.000,26.1,Volt\n")

	table, err := ReadCapacityLog(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 4 {
		t.Errorf("short line should be dropped: expected 4 rows, got %d", len(table.Rows))
	}
}

func TestReadPulseFile(t *testing.T) {
	dir := t.TempDir()
	content := "device preamble line 1\nline 2\nline 3\n" +
		"PassTime[Sec],Voltage[V],Current[mA],Condition,Temp1[Deg]\n" +
		"0,4.25,0,3,25.0\n" +
		"1,4.20,5000,2,25.1\n" +
		"2,3.70,5000,2,25.3\n"
	if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%06d", 42)), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := ReadPulseFile(dir, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[1].CurrentMA != 5000 || samples[1].Condition != 2 {
		t.Errorf("sample 1: expected 5000 mA discharge, got %v condition %d", samples[1].CurrentMA, samples[1].Condition)
	}
}

func TestReadPulseFile_MissingIsNotAnError(t *testing.T) {
	samples, err := ReadPulseFile(t.TempDir(), 7)
	if err != nil {
		t.Fatalf("missing pulse file must not be an error, got %v", err)
	}
	if samples != nil {
		t.Errorf("expected nil samples for a missing file, got %d", len(samples))
	}
}

func TestSource_CapacityResolutionOrder(t *testing.T) {
	ctx := context.Background()

	// Explicit config value wins over everything.
	dir := t.TempDir()
	writeChannel(t, dir, modernLog)
	src := NewSource(dir, cycle.RunConfig{Capacity: 1689})
	got, err := src.ResolveReferenceCapacity(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1689 {
		t.Errorf("explicit capacity: expected 1689, got %v", got)
	}

	// A capacity token in the path is next.
	root := t.TempDir()
	named := filepath.Join(root, "ATL_4-5mAh_test", "86")
	if err := os.MkdirAll(named, 0o755); err != nil {
		t.Fatal(err)
	}
	writeChannel(t, named, modernLog)
	got, err = NewSource(named, cycle.RunConfig{}).ResolveReferenceCapacity(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.5 {
		t.Errorf("path token: expected 4.5, got %v", got)
	}

	// Last resort: round(peak first-cycle current / first C-rate).
	fallback := t.TempDir()
	writeChannel(t, fallback, modernLog)
	firstCycle := "p1\np2\np3\n" +
		"PassTime[Sec],Voltage[V],Current[mA],Condition,Temp1[Deg]\n" +
		"0,3.9,337.8,1,25.0\n" +
		"1,4.0,337.8,1,25.0\n"
	if err := os.WriteFile(filepath.Join(fallback, fmt.Sprintf("%06d", 1)), []byte(firstCycle), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = NewSource(fallback, cycle.RunConfig{FirstCRate: 0.2}).ResolveReferenceCapacity(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != math.Round(337.8/0.2) {
		t.Errorf("current fallback: expected %v, got %v", math.Round(337.8/0.2), got)
	}
}

func TestSource_LoadSteps(t *testing.T) {
	dir := t.TempDir()
	writeChannel(t, dir, modernLog)

	records, err := NewSource(dir, cycle.RunConfig{Capacity: 1000}).LoadSteps(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}
