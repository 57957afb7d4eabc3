package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind classifies a JSON value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

// ScalarKinds lists the leaf kinds in report order.
var ScalarKinds = []Kind{KindNull, KindBoolean, KindNumber, KindString}

// String returns the lower-case type tag used in histograms.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DisplayName returns the name shown to users for the root type of a document.
func (k Kind) DisplayName() string {
	switch k {
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return k.String()
	}
}

// IsScalar reports whether values of this kind are leaves.
func (k Kind) IsScalar() bool {
	return k != KindArray && k != KindObject
}

// Value is an immutable JSON value.
// The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents or number literal
	items   []Value
	members []Member
}

// Member is a single key-value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a JSON boolean.
func Bool(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// Number returns a JSON number holding the given literal text.
// The literal is expected to be valid JSON number syntax.
func Number(literal string) Value {
	return Value{kind: KindNumber, text: literal}
}

// String returns a JSON string.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Array returns a JSON array holding a copy of items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// Object returns a JSON object built from members in order.
// When a key repeats, the last value wins and the key keeps the position of
// its first occurrence.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: KindObject, members: out}
}

// Kind returns the classifier tag of v.
func (v Value) Kind() Kind {
	return v.kind
}

// Len returns the number of elements of an array or members of an object,
// and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// At returns the i-th element of an array.
func (v Value) At(i int) Value {
	return v.items[i]
}

// MemberAt returns the i-th member of an object.
func (v Value) MemberAt(i int) Member {
	return v.members[i]
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the keys of an object in document order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// BoolValue returns the boolean held by v.
func (v Value) BoolValue() bool {
	return v.boolean
}

// Str returns the contents of a string value.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}
	return v.text
}

// Literal returns the number literal as it appeared in the source.
func (v Value) Literal() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.text
}

// Equal reports whether v and other are structurally equal.
// Numbers compare by canonical form and object members compare in order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.boolean == other.boolean
	case KindNumber:
		return CanonicalNumber(v.text) == CanonicalNumber(other.text)
	case KindString:
		return v.text == other.text
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(other.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != other.members[i].Key || !v.members[i].Value.Equal(other.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// CanonicalNumber returns the canonical decimal form of a JSON number literal.
//
// Integer literals are kept verbatim so that large integers survive a
// round-trip. Other literals go through float64 and are printed in the
// shortest form, switching to exponent notation outside [1e-6, 1e21).
func CanonicalNumber(literal string) string {
	if literal == "-0" {
		return "0"
	}
	if !strings.ContainsAny(literal, ".eE") {
		return literal
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	if f == 0 {
		return "0"
	}
	format := byte('f')
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'e' {
		// e-07 -> e-7
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return string(b)
}

// AnalysisResult holds the structural statistics of a document.
type AnalysisResult struct {
	Type          Kind
	Count         int
	Depth         int
	TypeHistogram map[Kind]int
	Keys          []string
}

// HasCount reports whether Count is meaningful for the root type.
func (r AnalysisResult) HasCount() bool {
	return !r.Type.IsScalar()
}

// Leaves returns the total number of scalar leaves counted in the histogram.
func (r AnalysisResult) Leaves() int {
	total := 0
	for _, n := range r.TypeHistogram {
		total += n
	}
	return total
}

// RenderStyle selects between pretty and minified output.
type RenderStyle int

const (
	StylePretty RenderStyle = iota
	StyleMinified
)

// RenderMode describes how a value is serialized.
type RenderMode struct {
	Style       RenderStyle
	IndentWidth int
}

// PrettyMode returns a pretty-printing mode with the given indent width.
func PrettyMode(indentWidth int) RenderMode {
	return RenderMode{Style: StylePretty, IndentWidth: indentWidth}
}

// MinifiedMode returns the compact rendering mode.
func MinifiedMode() RenderMode {
	return RenderMode{Style: StyleMinified}
}

func (m RenderMode) String() string {
	if m.Style == StyleMinified {
		return "minified"
	}
	return fmt.Sprintf("pretty(%d)", m.IndentWidth)
}

// RenderOutput is serialized text together with the mode that produced it.
type RenderOutput struct {
	Text string
	Mode RenderMode
}

// Position locates a problem in the source text.
type Position struct {
	Offset int64 // byte offset
	Line   int   // 1-based
	Column int   // 1-based, in runes
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// ValidationResult is the outcome of a validate request.
type ValidationResult struct {
	Valid    bool
	Message  string
	Position *Position
}
