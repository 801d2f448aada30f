package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func TestParseJSONKeepsDocumentOrder(t *testing.T) {
	doc := `{"z": {"inputs": {"b": 1, "a": 2}}, "m": {"outputs": {"q": "hi"}}, "a": {}}`
	ds, err := ParseJSON("order.json", []byte(doc))
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.Equal(t, "z", ds.Records[0].ID)
	assert.Equal(t, "m", ds.Records[1].ID)
	assert.Equal(t, "a", ds.Records[2].ID)
	assert.Equal(t, []Attr{{"b", 1.0}, {"a", 2.0}}, ds.Records[0].Inputs)
	assert.Empty(t, ds.Records[1].Inputs)
	v, ok := ds.Records[1].Output("q")
	assert.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestParseJSONMalformedGroupsAreEmpty(t *testing.T) {
	doc := `{"a": {"inputs": [1, 2], "outputs": null}, "b": 5, "c": {"inputs": {"n": {"deep": 1}, "s": null}}}`
	ds, err := ParseJSON("bad.json", []byte(doc))
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.Empty(t, ds.Records[0].Inputs)
	assert.Empty(t, ds.Records[0].Outputs)
	assert.Empty(t, ds.Records[1].Inputs)

	row := Reshape(ds).Rows[2]
	assert.Equal(t, `{"deep": 1}`, row["n (input)"])
	_, ok := row.Float("n (input)")
	assert.False(t, ok)
	v, present := row.Get("s (input)")
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestParseJSONRejectsNonObjects(t *testing.T) {
	_, err := ParseJSON("arr.json", []byte(`[1,2]`))
	assert.True(t, errors.Is(err, ErrNotObject))
	_, err = ParseJSON("broken.json", []byte(`{"a":`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	doc := `
second:
  inputs: {x: 2, label: two}
  outputs: {y: 20.5}
first:
  inputs:
    x: 1
  outputs:
    y: .inf
    ok: true
empty:
`
	ds, err := ParseYAML("d.yaml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.Equal(t, "second", ds.Records[0].ID)
	assert.Equal(t, []Attr{{"x", 2.0}, {"label", "two"}}, ds.Records[0].Inputs)
	assert.Equal(t, []Attr{{"y", 20.5}}, ds.Records[0].Outputs)

	y, _ := ds.Records[1].Output("y")
	_, ok := Float(y)
	assert.False(t, ok, "infinity is not a usable number")
	okVal, _ := ds.Records[1].Output("ok")
	assert.Equal(t, true, okVal)
	assert.Empty(t, ds.Records[2].Inputs)
}

func TestParseYAMLEmptyAndInvalid(t *testing.T) {
	ds, err := ParseYAML("e.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, ds.Records)

	_, err = ParseYAML("l.yaml", []byte("- a\n- b\n"))
	assert.True(t, errors.Is(err, ErrNotObject))
}

func TestLoadDispatchesByExtension(t *testing.T) {
	p := writeFixture(t, "two.json", twoRecords)
	tbl, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = Load(writeFixture(t, "notes.txt", "hello"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	ds, err := ParseJSON("two.json", []byte(twoRecords))
	require.NoError(t, err)
	tbl := Reshape(ds)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.True(t, strings.HasPrefix(buf.String(), "id,x (input),y (output)\n"))

	back, err := ParseCSV("two.csv", &buf, ',')
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, Reshape(back).Rows)
}

func TestCSVWithoutIDUsesLineNumbers(t *testing.T) {
	p := writeFixture(t, "flat.tsv", "x (input)\tnote\ty (output)\n1\tskip\t\n2\t\tabc\n")
	tbl, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, Row{"id": "1", "x (input)": 1.0}, tbl.Rows[0])
	assert.Equal(t, Row{"id": "2", "x (input)": 2.0, "y (output)": "abc"}, tbl.Rows[1])
}

func TestXLSXRoundTrip(t *testing.T) {
	ds, err := ParseJSON("two.json", []byte(twoRecords))
	require.NoError(t, err)
	tbl := Reshape(ds)

	p := filepath.Join(t.TempDir(), "two.xlsx")
	require.NoError(t, WriteXLSX(p, tbl))
	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, back.Rows)
	assert.Equal(t, tbl.Columns, back.Columns)
}

func TestDuplicateIDsKeepLastValueAtFirstPosition(t *testing.T) {
	ds, err := ParseJSON("dup", []byte(`{
		"a": {"inputs": {"x": 1}},
		"b": {"inputs": {"x": 5}},
		"a": {"inputs": {"x": 2}}
	}`))
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "a", ds.Records[0].ID)
	v, _ := ds.Records[0].Input("x")
	assert.Equal(t, 2.0, v)
	assert.Equal(t, "b", ds.Records[1].ID)

	ds, err = ParseYAML("dup", []byte("a:\n  inputs: {x: 1}\nb:\n  inputs: {x: 5}\na:\n  inputs: {x: 2}\n"))
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	v, _ = ds.Records[0].Input("x")
	assert.Equal(t, 2.0, v)

	ds, err = ParseCSV("dup", strings.NewReader("id,x (input)\na,1\nb,5\na,2\n"), ',')
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	v, _ = ds.Records[0].Input("x")
	assert.Equal(t, 2.0, v)

	tbl := Reshape(ds)
	n := 0
	for _, r := range tbl.Rows {
		if r.ID() == "a" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}
