package dataset

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ParseJSON decodes a mapping of record id to {inputs, outputs}. Record and
// attribute order follow the document, which encoding/json maps would lose.
func ParseJSON(name string, data []byte) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse json: invalid document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotObject
	}
	ds := &Dataset{Name: name}
	index := map[string]int{}
	root.ForEach(func(key, value gjson.Result) bool {
		rec := Record{ID: key.String()}
		if value.IsObject() {
			rec.Inputs = jsonGroup(value, "inputs")
			rec.Outputs = jsonGroup(value, "outputs")
		}
		ds.addRecord(index, rec)
		return true
	})
	return ds, nil
}

// jsonGroup reads one attribute group. Anything but an object is an empty group.
func jsonGroup(rec gjson.Result, field string) []Attr {
	var group gjson.Result
	rec.ForEach(func(key, value gjson.Result) bool {
		if key.String() == field {
			group = value
		}
		return true
	})
	if !group.IsObject() {
		return nil
	}
	var out []Attr
	group.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Attr{Name: key.String(), Value: jsonScalar(value)})
		return true
	})
	return out
}

func jsonScalar(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		// nested arrays/objects are kept verbatim and never coerce to numbers
		return v.Raw
	}
}
