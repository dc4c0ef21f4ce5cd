// Package toyo loads Toyo cycler raw data: the capacity.log cycle summary
// and the per-cycle %06d pulse detail files.
package toyo

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Breezyryu/batter/domain/cycle"
	"github.com/Breezyryu/batter/domain/profile"
)

// summaryHeaders maps both Toyo header generations onto the canonical
// column names the pipeline parser expects. Older firmware writes the
// long-form headers.
var summaryHeaders = map[string]string{
	"TotlCycle":       cycle.ColCycle,
	"Total Cycle":     cycle.ColCycle,
	"Condition":       cycle.ColCondition,
	"Cap[mAh]":        cycle.ColCapacity,
	"Capacity[mAh]":   cycle.ColCapacity,
	"Pow[mWh]":        cycle.ColEnergy,
	"Power[mWh]":      cycle.ColEnergy,
	"Ocv":             cycle.ColVoltageEnd,
	"OCV[V]":          cycle.ColVoltageEnd,
	"PeakVolt[V]":     cycle.ColVoltagePeak,
	"Peak Volt.[V]":   cycle.ColVoltagePeak,
	"PeakTemp[Deg]":   cycle.ColPeakTemp,
	"Peak Temp.[deg]": cycle.ColPeakTemp,
	"AveVolt[V]":      cycle.ColAvgVoltage,
	"Ave. Volt.[V]":   cycle.ColAvgVoltage,
	"Finish":          cycle.ColEndFactor,
	"End Factor":      cycle.ColEndFactor,
	"Mode":            cycle.ColMode,
}

// ReadCapacityLog reads a channel folder's capacity.log into the canonical
// raw table shape. Lines with the wrong field count are skipped, matching
// the tolerant reader the instrument's own export needs.
func ReadCapacityLog(channelDir string) (*cycle.RawTable, error) {
	path := filepath.Join(channelDir, "capacity.log")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capacity log: %w", err)
	}
	defer f.Close()

	return readCSVTable(f, 0, summaryHeaders)
}

// pulseHeaders covers both pulse-file header generations.
var pulseHeaders = map[string]string{
	"PassTime[Sec]":    "time_sec",
	"Passed Time[Sec]": "time_sec",
	"Voltage[V]":       "voltage_v",
	"Current[mA]":      "current_ma",
	"Condition":        "condition",
	"Temp1[Deg]":       "temp_c",
	"Temp1[deg]":       "temp_c",
	"TotlCycle":        "total_cycle",
}

// ReadPulseFile reads one per-cycle detail file (named %06d) into samples.
// The first three lines are a device preamble. A missing file is not an
// error; it returns nil samples.
func ReadPulseFile(channelDir string, cycleNumber int) ([]profile.Sample, error) {
	path := filepath.Join(channelDir, fmt.Sprintf("%06d", cycleNumber))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open pulse file: %w", err)
	}
	defer f.Close()

	table, err := readCSVTable(f, 3, pulseHeaders)
	if err != nil {
		return nil, err
	}

	timeIdx := table.ColumnIndex("time_sec")
	voltIdx := table.ColumnIndex("voltage_v")
	currIdx := table.ColumnIndex("current_ma")
	condIdx := table.ColumnIndex("condition")
	tempIdx := table.ColumnIndex("temp_c")
	if timeIdx < 0 || voltIdx < 0 || currIdx < 0 || condIdx < 0 {
		return nil, fmt.Errorf("pulse file %s: missing required columns", path)
	}

	samples := make([]profile.Sample, 0, len(table.Rows))
	for _, row := range table.Rows {
		s := profile.Sample{
			TimeSec:      parseFloat(row, timeIdx),
			VoltageV:     parseFloat(row, voltIdx),
			CurrentMA:    parseFloat(row, currIdx),
			TemperatureC: parseFloat(row, tempIdx),
		}
		if cond := parseFloat(row, condIdx); !math.IsNaN(cond) {
			s.Condition = int(cond)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// readCSVTable reads comma-separated lines after skipping a preamble,
// renaming known headers and dropping rows whose field count disagrees
// with the header.
func readCSVTable(f *os.File, skipLines int, rename map[string]string) (*cycle.RawTable, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for i := 0; i < skipLines; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file in preamble")
		}
	}

	var table cycle.RawTable
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitCSVLine(line)
		if err != nil {
			continue // bad line, skip like the reference reader
		}
		if table.Columns == nil {
			cols := make([]string, len(fields))
			for i, c := range fields {
				name := strings.TrimSpace(c)
				if canonical, ok := rename[name]; ok {
					name = canonical
				}
				cols[i] = name
			}
			table.Columns = cols
			continue
		}
		if len(fields) != len(table.Columns) {
			continue
		}
		table.Rows = append(table.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan table: %w", err)
	}
	if table.Columns == nil {
		return nil, fmt.Errorf("empty table")
	}
	return &table, nil
}

func splitCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = false
	return r.Read()
}

func parseFloat(row []string, idx int) float64 {
	if idx < 0 || idx >= len(row) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
