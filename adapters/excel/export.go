package excel

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/Breezyryu/batter/domain/cycle"
)

// cycleHeader lists the exported columns in output order.
var cycleHeader = []string{
	"CycleNumber", "OriginalCycle",
	"ChgCapacityNorm", "DchgCapacityNorm",
	"EffChgDchg", "EffDchgChg",
	"DchgEnergy_mWh", "RestEndVoltage_V", "AvgVoltage_V",
	"PeakTemperature_C", "Resistance_mOhm",
}

// WriteCycleTable exports a per-cycle result table to an xlsx workbook.
// Undefined metrics become empty cells, not zeros.
func WriteCycleTable(path string, capacity float64, rows []cycle.CycleRow) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Cycles"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"ReferenceCapacity_mAh", capacity}); err != nil {
		return fmt.Errorf("write capacity row: %w", err)
	}
	header := make([]interface{}, len(cycleHeader))
	for i, h := range cycleHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cells := []interface{}{
			row.CycleNumber, row.OriginalCycle,
			cellValue(row.ChgNorm), cellValue(row.DchgNorm),
			cellValue(row.Eff), cellValue(row.Eff2),
			cellValue(row.DchgEnergy), cellValue(row.RestEndV), cellValue(row.AvgVoltage),
			cellValue(row.PeakTemp), cellValue(row.DCIR),
		}
		addr := fmt.Sprintf("A%d", i+3)
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("write cycle %d: %w", row.CycleNumber, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
