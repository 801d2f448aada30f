// Package keymap routes keyboard chords to focus targets.
package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrChordTaken is returned when a chord is registered twice on one router.
var ErrChordTaken = errors.New("chord already bound")

// Position places a panel on the left or right half of the page. Each side
// gets keys under its own hand.
type Position int

const (
	Left Position = iota
	Right
)

func (p Position) String() string {
	if p == Right {
		return "right"
	}
	return "left"
}

// ParsePosition accepts "left" or "right" (case-insensitive).
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return Left, fmt.Errorf("invalid position: %s (use left or right)", s)
	}
}

// Field names a focusable control inside a panel.
type Field string

const (
	FieldKind   Field = "kind"
	FieldInput  Field = "input"
	FieldOutput Field = "output"
	FieldMin    Field = "min"
	FieldMax    Field = "max"
	FieldBins   Field = "bins"
)

// Chord is an alt+key combination. Keys are stored lower-case so "alt-E"
// and "alt-e" are the same chord.
type Chord struct {
	Key rune
}

// Alt returns the alt chord for key.
func Alt(key rune) Chord { return Chord{Key: unicode.ToLower(key)} }

// ParseChord reads forms like "alt-d", "Alt+D" or "d".
func ParseChord(s string) (Chord, error) {
	raw := strings.TrimSpace(s)
	lower := strings.ToLower(raw)
	for _, p := range []string{"alt-", "alt+"} {
		if strings.HasPrefix(lower, p) {
			raw = raw[len(p):]
			break
		}
	}
	if utf8.RuneCountInString(raw) != 1 {
		return Chord{}, fmt.Errorf("invalid chord: %q", s)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	return Alt(r), nil
}

func (c Chord) String() string { return "alt-" + strings.ToUpper(string(c.Key)) }

// Placeholder is the hint a focusable control shows while empty.
func (c Chord) Placeholder() string { return c.String() + " to focus..." }

// Target is what a chord focuses: one field of one panel.
type Target struct {
	Panel string `json:"panel"`
	Field Field  `json:"field"`
}

// Binding pairs a chord with its target.
type Binding struct {
	Chord  Chord  `json:"-"`
	Keys   string `json:"keys"`
	Target Target `json:"target"`
}

// Router holds chord registrations for one page. It does not listen to
// keyboards itself; callers feed it chords and act on the resolved target.
type Router struct {
	targets map[Chord]Target
	order   []Chord
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{targets: map[Chord]Target{}}
}

// Register binds c to t.
func (r *Router) Register(c Chord, t Target) error {
	if prev, ok := r.targets[c]; ok {
		return fmt.Errorf("%w: %s -> %s.%s", ErrChordTaken, c, prev.Panel, prev.Field)
	}
	r.targets[c] = t
	r.order = append(r.order, c)
	return nil
}

// Unregister drops every chord pointing at panel.
func (r *Router) Unregister(panel string) {
	kept := r.order[:0]
	for _, c := range r.order {
		if r.targets[c].Panel == panel {
			delete(r.targets, c)
			continue
		}
		kept = append(kept, c)
	}
	r.order = kept
}

// Resolve returns the target bound to c.
func (r *Router) Resolve(c Chord) (Target, bool) {
	t, ok := r.targets[c]
	return t, ok
}

// Bindings lists registrations in the order they were made.
func (r *Router) Bindings() []Binding {
	out := make([]Binding, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, Binding{Chord: c, Keys: c.String(), Target: r.targets[c]})
	}
	return out
}

var panelKeys = map[Position]map[Field]rune{
	Left:  {FieldKind: 'e', FieldInput: 'd', FieldOutput: 'f', FieldMin: 's', FieldMax: 'g', FieldBins: 'c'},
	Right: {FieldKind: 'i', FieldInput: 'j', FieldOutput: 'k', FieldMin: 'h', FieldMax: 'l', FieldBins: 'n'},
}

// ChordFor returns the default chord for field on a panel at pos.
func ChordFor(pos Position, field Field) (Chord, bool) {
	k, ok := panelKeys[pos][field]
	if !ok {
		return Chord{}, false
	}
	return Alt(k), true
}
