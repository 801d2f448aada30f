package view

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/KaramelBytes/ioscope/internal/dataset"
	"github.com/KaramelBytes/ioscope/internal/fuzzy"
	"github.com/KaramelBytes/ioscope/internal/histogram"
	"github.com/KaramelBytes/ioscope/internal/keymap"
)

// Defaults seeds a new panel's histogram filter.
type Defaults struct {
	BinCount int
	RangeMin float64
	RangeMax float64
}

// DefaultDefaults mirrors a fresh histogram panel: ten bins over [0, 100000].
func DefaultDefaults() Defaults {
	return Defaults{BinCount: 10, RangeMin: 0, RangeMax: 100000}
}

// Panel is one half of the page. It owns its selection and filter, so two
// panels over the same table never share mutable state.
type Panel struct {
	ID       string
	Position keymap.Position
	Kind     Kind
	// Scatter axes
	X, Y string
	// Histogram configuration
	Filter histogram.FilterSpec
}

// NewPanel returns a panel with a fresh id and the given filter defaults.
func NewPanel(pos keymap.Position, kind Kind, d Defaults) *Panel {
	return &Panel{
		ID:       uuid.NewString(),
		Position: pos,
		Kind:     kind,
		Filter: histogram.FilterSpec{
			RangeMin: d.RangeMin,
			RangeMax: d.RangeMax,
			BinCount: d.BinCount,
		},
	}
}

// Fields lists the focusable controls for the panel's current kind.
func (p *Panel) Fields() []keymap.Field {
	if p.Kind == Histogram {
		return []keymap.Field{keymap.FieldKind, keymap.FieldInput, keymap.FieldOutput, keymap.FieldMin, keymap.FieldMax, keymap.FieldBins}
	}
	return []keymap.Field{keymap.FieldKind, keymap.FieldInput, keymap.FieldOutput}
}

// Bind registers the panel's default chords on r, replacing any earlier
// registration for this panel (the field set changes with the kind).
func (p *Panel) Bind(r *keymap.Router) error {
	r.Unregister(p.ID)
	for _, f := range p.Fields() {
		c, ok := keymap.ChordFor(p.Position, f)
		if !ok {
			continue
		}
		if err := r.Register(c, keymap.Target{Panel: p.ID, Field: f}); err != nil {
			return fmt.Errorf("bind %s panel: %w", p.Position, err)
		}
	}
	return nil
}

// SetKind switches the rendering, keeping both selections for a later switch back.
func (p *Panel) SetKind(k Kind) { p.Kind = k }

// Select stores column as the panel's choice for field. For scatter panels
// the input field is the X axis and the output field the Y axis.
func (p *Panel) Select(field keymap.Field, column string) error {
	switch {
	case field == keymap.FieldInput && p.Kind == Scatter:
		p.X = column
	case field == keymap.FieldOutput && p.Kind == Scatter:
		p.Y = column
	case field == keymap.FieldInput:
		p.Filter.InputColumn = column
	case field == keymap.FieldOutput:
		p.Filter.OutputColumn = column
	default:
		return fmt.Errorf("field %s does not take a column", field)
	}
	return nil
}

// ColumnSetFor reports which columns the selector for field offers.
// Histogram selectors split inputs from outputs; scatter axes offer all.
func (p *Panel) ColumnSetFor(field keymap.Field) ColumnSet {
	if p.Kind != Histogram {
		return AllColumns
	}
	if field == keymap.FieldOutput {
		return OutputColumns
	}
	return InputColumns
}

// Options returns the selector options for field over t.
func (p *Panel) Options(t *dataset.Table, field keymap.Field) []fuzzy.Option {
	return ColumnOptions(t, p.ColumnSetFor(field))
}

// Render dispatches on the panel kind.
func (p *Panel) Render(t *dataset.Table) Output {
	switch p.Kind {
	case Histogram:
		h := HistogramOf(t, p.Filter)
		return Output{Kind: Histogram, Histogram: &h}
	default:
		s := ScatterOf(t, p.X, p.Y)
		return Output{Kind: Scatter, Scatter: &s}
	}
}
