package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/ioscope/internal/dataset"
)

const fixtureJSON = `{
  "r1": {"inputs": {"temperature": 20, "catalyst": "A"}, "outputs": {"yield": 5}},
  "r2": {"inputs": {"temperature": 40, "catalyst": "B"}, "outputs": {"yield": 15}},
  "r3": {"inputs": {"temperature": 60}, "outputs": {"yield": 25}}
}`

// resetFlags clears values and Changed state that cobra keeps across
// Execute calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// setup isolates HOME and writes the fixture dataset.
func setup(t *testing.T) (dir, data string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)
	data = filepath.Join(dir, "runs.json")
	if err := os.WriteFile(data, []byte(fixtureJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return dir, data
}

func TestCLI_Columns(t *testing.T) {
	_, data := setup(t)
	out := runCmd(t, "columns", data, "--kind", "input")
	if !strings.Contains(out, "temperature (input)") || !strings.Contains(out, "catalyst (input)") {
		t.Fatalf("missing input columns:\n%s", out)
	}
	if strings.Contains(out, "yield (output)") {
		t.Fatalf("output column listed under --kind input:\n%s", out)
	}
	if _, err := execCmd(t, "columns", data, "--kind", "sideways"); err == nil {
		t.Fatalf("expected error for bad --kind")
	}
}

func TestCLI_Match(t *testing.T) {
	_, data := setup(t)
	out := runCmd(t, "match", data, "tempreature")
	if !strings.HasPrefix(out, " 1. temperature (input)") {
		t.Fatalf("expected temperature first, got:\n%s", out)
	}
	out = runCmd(t, "match", data, "zzqq")
	if !strings.Contains(out, "No columns match") {
		t.Fatalf("expected no match message, got:\n%s", out)
	}
}

func TestCLI_ScatterJSON(t *testing.T) {
	_, data := setup(t)
	out := runCmd(t, "scatter", data, "--x", "temp", "--y", "yield", "--json")
	var s struct {
		Title string     `json:"title"`
		X     []*float64 `json:"x"`
		Y     []*float64 `json:"y"`
	}
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if s.Title != "yield (output) vs. temperature (input)" {
		t.Fatalf("unexpected title %q", s.Title)
	}
	if len(s.X) != 3 || *s.X[2] != 60 || *s.Y[2] != 25 {
		t.Fatalf("unexpected series: %+v", s)
	}
}

func TestCLI_ScatterUnknownColumn(t *testing.T) {
	_, data := setup(t)
	_, err := execCmd(t, "scatter", data, "--x", "qqqq", "--y", "yield")
	if err == nil || !strings.Contains(err.Error(), "unknown column") {
		t.Fatalf("expected unknown column error, got %v", err)
	}
}

func TestCLI_Histogram(t *testing.T) {
	dir, data := setup(t)
	out := runCmd(t, "histogram", data, "--input", "temperature", "--output", "yield", "--min", "10", "--max", "30", "--bins", "2")
	if !strings.Contains(out, "2 rows matched") {
		t.Fatalf("unexpected histogram output:\n%s", out)
	}
	if !strings.Contains(out, "filtered by yield (output) between 10 and 30") {
		t.Fatalf("missing title:\n%s", out)
	}

	png := filepath.Join(dir, "out", "hist.png")
	runCmd(t, "histogram", data, "--input", "temperature", "--output", "yield", "--png", png)
	b, err := os.ReadFile(png)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("not a png")
	}
}

func TestCLI_HistogramClampsBins(t *testing.T) {
	_, data := setup(t)
	out := runCmd(t, "histogram", data, "--input", "temperature", "--output", "yield", "--bins", "9")
	if !strings.Contains(out, "using 1") {
		t.Fatalf("expected clamp warning:\n%s", out)
	}
}

func TestCLI_DescribeToFile(t *testing.T) {
	dir, data := setup(t)
	outPath := filepath.Join(dir, "summary.md")
	runCmd(t, "describe", data, "-o", outPath)
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	s := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 3", "catalyst (input) [input] text, missing=1", "| yield (output) | 3 |"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestCLI_ExportRoundTrip(t *testing.T) {
	dir, data := setup(t)
	for _, name := range []string{"table.csv", "table.xlsx"} {
		path := filepath.Join(dir, name)
		runCmd(t, "export", data, "-o", path)
		tbl, err := dataset.Load(path)
		if err != nil {
			t.Fatalf("reload %s: %v", name, err)
		}
		if tbl.Len() != 3 {
			t.Fatalf("%s: expected 3 rows, got %d", name, tbl.Len())
		}
		if f, ok := tbl.Rows[1].Float("temperature (input)"); !ok || f != 40 {
			t.Fatalf("%s: unexpected temperature %v %v", name, f, ok)
		}
		if _, ok := tbl.Rows[2].Get("catalyst (input)"); ok {
			t.Fatalf("%s: empty cell came back as a value", name)
		}
	}
	if _, err := execCmd(t, "export", data, "-o", filepath.Join(dir, "table.parquet")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestCLI_Keys(t *testing.T) {
	setup(t)
	out := runCmd(t, "keys")
	for _, want := range []string{"alt-E", "alt-D", "alt-F", "alt-I", "alt-N", "Histogram Filter"} {
		if !strings.Contains(out, want) {
			t.Fatalf("keys output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "alt-S") {
		t.Fatalf("scatter panel should not bind range chords:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	dir, _ := setup(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	runCmd(t, "--config", cfgPath, "config", "set", "default_bins", "7")
	out := runCmd(t, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, "default_bins: 7") {
		t.Fatalf("expected saved bins:\n%s", out)
	}
	if _, err := execCmd(t, "--config", cfgPath, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := execCmd(t, "--config", cfgPath, "config", "set", "match_threshold", "3"); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestCLI_HistogramRejectsInfiniteBounds(t *testing.T) {
	_, data := setup(t)
	for _, bound := range [][]string{{"--min=-inf"}, {"--max=+Inf"}} {
		args := append([]string{"histogram", data, "--input", "temperature", "--output", "yield", "--json"}, bound...)
		_, err := execCmd(t, args...)
		if err == nil || !strings.Contains(err.Error(), "finite") {
			t.Fatalf("%v: expected finite-bound error, got %v", bound, err)
		}
	}
}

func TestCLI_HistogramHasNoShortOutputFlag(t *testing.T) {
	if f := histogramCmd.Flags().ShorthandLookup("o"); f != nil {
		t.Fatalf("-o is bound to --%s on histogram; it means an output file elsewhere", f.Name)
	}
}
