package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MetaKind discriminates the value shapes allowed in item metadata.
type MetaKind int

const (
	MetaText MetaKind = iota
	MetaNumber
	MetaBool
	MetaList
)

// MetaValue is a small tagged union covering everything the collectors
// store: free text, engagement counters, flags and tag lists. Keeping the
// shapes closed avoids an untyped any-bag while staying open per key.
type MetaValue struct {
	kind MetaKind
	text string
	num  float64
	flag bool
	list []string
}

// Text wraps a string value.
func Text(s string) MetaValue { return MetaValue{kind: MetaText, text: s} }

// Number wraps a numeric value.
func Number(n float64) MetaValue { return MetaValue{kind: MetaNumber, num: n} }

// Flag wraps a boolean value.
func Flag(b bool) MetaValue { return MetaValue{kind: MetaBool, flag: b} }

// List wraps an ordered list of strings.
func List(vs ...string) MetaValue { return MetaValue{kind: MetaList, list: vs} }

// Kind reports which shape the value holds.
func (v MetaValue) Kind() MetaKind { return v.kind }

// Str returns the text value, or "" for other kinds.
func (v MetaValue) Str() string {
	if v.kind != MetaText {
		return ""
	}
	return v.text
}

// Float returns the numeric value, or 0 for other kinds.
func (v MetaValue) Float() float64 {
	if v.kind != MetaNumber {
		return 0
	}
	return v.num
}

// Bool returns the flag value, or false for other kinds.
func (v MetaValue) Bool() bool {
	if v.kind != MetaBool {
		return false
	}
	return v.flag
}

// Items returns the list value, or nil for other kinds.
func (v MetaValue) Items() []string {
	if v.kind != MetaList {
		return nil
	}
	return v.list
}

// IsZero reports whether the value is the empty form of its kind. Merge
// precedence treats zero values the same as absent keys.
func (v MetaValue) IsZero() bool {
	switch v.kind {
	case MetaText:
		return v.text == ""
	case MetaNumber:
		return v.num == 0
	case MetaBool:
		return !v.flag
	case MetaList:
		return len(v.list) == 0
	}
	return true
}

// String renders the value for prompts and logs.
func (v MetaValue) String() string {
	switch v.kind {
	case MetaText:
		return v.text
	case MetaNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case MetaBool:
		return strconv.FormatBool(v.flag)
	case MetaList:
		return strings.Join(v.list, ", ")
	}
	return ""
}

// Metadata is the open string-keyed mapping carried by every item.
type Metadata map[string]MetaValue

// Str returns the text value under key, or "".
func (m Metadata) Str(key string) string { return m[key].Str() }

// Float returns the numeric value under key, or 0.
func (m Metadata) Float(key string) float64 { return m[key].Float() }

// Items returns the list value under key, or nil.
func (m Metadata) Items(key string) []string { return m[key].Items() }

// Has reports whether key holds a non-zero value.
func (m Metadata) Has(key string) bool {
	v, ok := m[key]
	return ok && !v.IsZero()
}

// ItemID builds the stable item identifier from its provenance triple.
func ItemID(source SourceType, subtype, nativeID string) string {
	return fmt.Sprintf("%s:%s:%s", source, subtype, nativeID)
}
