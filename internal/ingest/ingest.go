package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

const (
	ColName        = "Equipment Name"
	ColType        = "Type"
	ColFlowrate    = "Flowrate"
	ColPressure    = "Pressure"
	ColTemperature = "Temperature"
)

// RequiredColumns lists the header names every upload must carry.
var RequiredColumns = []string{ColName, ColType, ColFlowrate, ColPressure, ColTemperature}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Policy tightens row validation beyond the schema checks.
type Policy struct {
	RequireName bool
	RequireType bool
}

var errEmptyValue = errors.New("empty value")

func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", &domain.UnsupportedFormatError{Filename: name}
	}
}

// Parse decodes raw tabular bytes into equipment drafts in file order.
// Either every data row converts or an error is returned with no drafts.
func Parse(raw []byte, format Format, policy Policy) ([]domain.Equipment, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(raw)
	case FormatXLSX:
		rows, err = readXLSX(raw)
	default:
		return nil, &domain.UnsupportedFormatError{Filename: string(format)}
	}
	if err != nil {
		return nil, err
	}
	return convert(rows, policy)
}

func readCSV(raw []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				// count records, not lines; quoted fields may span lines.
				// rows holds the header plus the data rows read so far.
				return nil, &domain.RowParseError{Row: max(len(rows), 1), Err: pe.Err}
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &domain.MalformedFileError{Format: string(FormatXLSX), Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func convert(rows [][]string, policy Policy) ([]domain.Equipment, error) {
	if len(rows) == 0 {
		return nil, &domain.MissingColumnsError{Columns: append([]string(nil), RequiredColumns...)}
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]domain.Equipment, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rowNum := i + 1
		cell := func(col string) string {
			j := idx[col]
			if j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		eq := domain.Equipment{
			Name: cell(ColName),
			Type: cell(ColType),
		}
		if policy.RequireName && eq.Name == "" {
			return nil, &domain.RowParseError{Row: rowNum, Column: ColName, Err: errEmptyValue}
		}
		if policy.RequireType && eq.Type == "" {
			return nil, &domain.RowParseError{Row: rowNum, Column: ColType, Err: errEmptyValue}
		}

		for _, f := range []struct {
			col string
			dst *float64
		}{
			{ColFlowrate, &eq.Flowrate},
			{ColPressure, &eq.Pressure},
			{ColTemperature, &eq.Temperature},
		} {
			v, err := parseNumber(cell(f.col))
			if err != nil {
				return nil, &domain.RowParseError{Row: rowNum, Column: f.col, Value: cell(f.col), Err: err}
			}
			*f.dst = v
		}
		out = append(out, eq)
	}
	return out, nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errEmptyValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
