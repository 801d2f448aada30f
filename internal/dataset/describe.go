package dataset

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
)

// ColumnSummary captures coverage and numeric statistics for one column.
type ColumnSummary struct {
	Name    string
	Group   string // id|input|output
	Kind    string // numeric|text|mixed|empty
	Present int
	Missing int
	Numeric int
	// Numeric stats, set when Numeric > 0
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64
}

// Summary describes a reshaped table column by column.
type Summary struct {
	Name    string
	Rows    int
	Columns []ColumnSummary
}

// Describe summarizes every column of t.
func Describe(t *Table) (*Summary, error) {
	s := &Summary{Name: t.Name, Rows: t.Len(), Columns: make([]ColumnSummary, 0, len(t.Columns))}
	for _, col := range t.Columns {
		cs, err := describeColumn(t, col)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", col, err)
		}
		s.Columns = append(s.Columns, cs)
	}
	return s, nil
}

func describeColumn(t *Table, col string) (ColumnSummary, error) {
	cs := ColumnSummary{Name: col, Group: columnGroup(col)}
	var nums stats.Float64Data
	for _, row := range t.Rows {
		v, ok := row[col]
		if !ok || v == nil {
			cs.Missing++
			continue
		}
		cs.Present++
		if f, ok := Float(v); ok {
			nums = append(nums, f)
		}
	}
	cs.Numeric = len(nums)
	switch {
	case cs.Present == 0:
		cs.Kind = "empty"
	case cs.Numeric == cs.Present:
		cs.Kind = "numeric"
	case cs.Numeric == 0:
		cs.Kind = "text"
	default:
		cs.Kind = "mixed"
	}
	if len(nums) == 0 {
		return cs, nil
	}
	var err error
	if cs.Min, err = nums.Min(); err != nil {
		return cs, err
	}
	if cs.Max, err = nums.Max(); err != nil {
		return cs, err
	}
	if cs.Mean, err = nums.Mean(); err != nil {
		return cs, err
	}
	if cs.Median, err = nums.Median(); err != nil {
		return cs, err
	}
	if len(nums) > 1 {
		if cs.Std, err = nums.StandardDeviationSample(); err != nil {
			return cs, err
		}
	}
	return cs, nil
}

func columnGroup(col string) string {
	switch {
	case col == IDColumn:
		return "id"
	case IsInputColumn(col):
		return "input"
	case IsOutputColumn(col):
		return "output"
	default:
		return ""
	}
}

// Markdown renders a compact, human-readable report.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(s.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range s.Columns {
		b.WriteString(fmt.Sprintf("- %s [%s] %s", c.Name, c.Group, c.Kind))
		if c.Missing > 0 {
			b.WriteString(fmt.Sprintf(", missing=%d", c.Missing))
		}
		b.WriteString("\n")
	}

	var numeric []ColumnSummary
	for _, c := range s.Columns {
		if c.Numeric > 0 && c.Group != "id" {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) > 0 {
		b.WriteString("\n[NUMERIC]\n")
		b.WriteString("| column | n | min | max | mean | median | std |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, c := range numeric {
			b.WriteString(fmt.Sprintf("| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				safeCell(c.Name), c.Numeric, c.Min, c.Max, c.Mean, c.Median, c.Std))
		}
	}
	return b.String()
}

func safeCell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
