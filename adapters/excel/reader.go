// Package excel reads and writes cycle tables in spreadsheet form. Some
// labs export cycler summaries to xlsx or csv instead of shipping the raw
// channel folders; this adapter maps those files onto the canonical step
// table so they can enter the same pipeline.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Breezyryu/batter/domain/cycle"
)

// DataReader handles reading step tables from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	// HeaderMap renames file headers onto canonical column names before
	// parsing; nil means the file already uses canonical names.
	HeaderMap map[string]string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadTable reads the file into the canonical raw table shape.
func (r *DataReader) ReadTable() (*cycle.RawTable, error) {
	log.Printf("[DataReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadSteps reads and parses the file into validated step records.
func (r *DataReader) ReadSteps() ([]cycle.StepRecord, error) {
	table, err := r.ReadTable()
	if err != nil {
		return nil, err
	}
	return cycle.ParseSteps(table)
}

func (r *DataReader) readExcel() (*cycle.RawTable, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	table := r.buildTable(rows)
	log.Printf("[DataReader] read %d rows from %s in %s", len(table.Rows), sheet, time.Since(startTime))
	return table, nil
}

func (r *DataReader) readCSV() (*cycle.RawTable, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}
	return r.buildTable(records), nil
}

func (r *DataReader) buildTable(rows [][]string) *cycle.RawTable {
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if canonical, ok := r.HeaderMap[name]; ok {
			name = canonical
		}
		header[i] = name
	}

	table := &cycle.RawTable{Columns: header}
	for _, row := range rows[1:] {
		// Pad ragged xlsx rows so optional trailing cells read as null.
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		table.Rows = append(table.Rows, row[:len(header)])
	}
	return table
}
