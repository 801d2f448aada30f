package dataset

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Attr is one named scalar inside an attribute group.
type Attr struct {
	Name  string
	Value any // float64, string, bool or nil
}

// Record is one labeled input/output data point keyed by its identifier.
// Attribute groups keep the order they had in the source document.
type Record struct {
	ID      string
	Inputs  []Attr
	Outputs []Attr
}

// Input returns the value of the named input attribute.
func (r Record) Input(name string) (any, bool) { return lookup(r.Inputs, name) }

// Output returns the value of the named output attribute.
func (r Record) Output(name string) (any, bool) { return lookup(r.Outputs, name) }

func lookup(group []Attr, name string) (any, bool) {
	for i := len(group) - 1; i >= 0; i-- {
		if group[i].Name == name {
			return group[i].Value, true
		}
	}
	return nil, false
}

// Dataset is the ordered record collection produced by a loader.
type Dataset struct {
	Name    string
	Records []Record
}

// addRecord appends rec unless its id is already present, in which case rec
// replaces the earlier record at its original position. index maps ids to
// positions in ds.Records.
func (ds *Dataset) addRecord(index map[string]int, rec Record) {
	if i, ok := index[rec.ID]; ok {
		ds.Records[i] = rec
		return
	}
	index[rec.ID] = len(ds.Records)
	ds.Records = append(ds.Records, rec)
}

// Float coerces a cell value to a finite number. Strings holding a number
// are accepted; booleans, nil, NaN and infinities are not.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		v = strings.TrimSpace(x)
		if v == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
