package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Flat files (CSV/TSV/XLSX) use the same header convention as reshaped rows:
// an "id" column plus "<attr> (input)" and "<attr> (output)" columns. Other
// columns are ignored and empty cells are left out of the record.

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvLoader) Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseCSV(filepath.Base(path), f, sniffDelimiter(path))
}

// ParseCSV reads a flat table using the given delimiter.
func ParseCSV(name string, r io.Reader, delim rune) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	// trimming would also swallow tab delimiters of empty fields
	cr.TrimLeadingSpace = delim != '\t'
	cr.Comma = delim
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{Name: name}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var body [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(body)+1, err)
		}
		body = append(body, rec)
	}
	return flatRecords(name, header, body), nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Dataset{Name: filepath.Base(path)}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Dataset{Name: filepath.Base(path)}, nil
	}
	return flatRecords(filepath.Base(path), rows[0], rows[1:]), nil
}

func flatRecords(name string, header []string, body [][]string) *Dataset {
	ds := &Dataset{Name: name, Records: make([]Record, 0, len(body))}
	idCol := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == IDColumn && idCol < 0 {
			idCol = i
		}
	}
	index := map[string]int{}
	for n, cells := range body {
		rec := Record{ID: strconv.Itoa(n + 1)}
		if idCol >= 0 && idCol < len(cells) && strings.TrimSpace(cells[idCol]) != "" {
			rec.ID = strings.TrimSpace(cells[idCol])
		}
		for i, h := range header {
			if i >= len(cells) {
				break
			}
			raw := strings.TrimSpace(cells[i])
			if raw == "" {
				continue
			}
			switch {
			case IsInputColumn(h):
				rec.Inputs = append(rec.Inputs, Attr{Name: strings.TrimSuffix(h, InputSuffix), Value: cellValue(raw)})
			case IsOutputColumn(h):
				rec.Outputs = append(rec.Outputs, Attr{Name: strings.TrimSuffix(h, OutputSuffix), Value: cellValue(raw)})
			}
		}
		ds.addRecord(index, rec)
	}
	return ds
}

func cellValue(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// FormatValue renders a cell the way flat exports write it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes t as a flat table with one column per table column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			line[i] = FormatValue(row[c])
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves t as a single-sheet workbook at path.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r, row := range t.Rows {
		cells := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			switch v := row[c].(type) {
			case float64, string, bool:
				cells[i] = v
			default:
				cells[i] = FormatValue(v)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %s: %w", row.ID(), err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
