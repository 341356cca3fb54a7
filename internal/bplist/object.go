// Package bplist decodes binary property lists into a flat object table.
//
// Collections are never expanded in place: arrays and dictionaries keep the
// object-table indices of their children, so decoding cost is bounded by the
// input size regardless of how the graph references itself.
package bplist

import "time"

// Kind identifies the type of a decoded object.
type Kind uint8

// Object kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindDate
	KindData
	KindASCII
	KindUnicode
	KindUID
	KindArray
	KindDict
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindReal:    "real",
	KindDate:    "date",
	KindData:    "data",
	KindASCII:   "ascii",
	KindUnicode: "unicode",
	KindUID:     "uid",
	KindArray:   "array",
	KindDict:    "dict",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ReferenceEpoch is the instant date objects and Cocoa timestamps count from.
var ReferenceEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Object is one decoded entry of the object table. Only the fields that
// belong to Kind are set.
type Object struct {
	Kind Kind

	Bool bool
	Int  int64
	// Real holds floating point values and, for KindDate, seconds since ReferenceEpoch.
	Real float64
	Data []byte
	Str  string
	// UID is a keyed-archiver reference into the archive's $objects array.
	UID uint64

	// Refs holds array members; Keys and Values hold dictionary entries in
	// encoded order. All three are indices into Table.Objects.
	Refs   []int
	Keys   []int
	Values []int
}

// IsString reports whether the object is an ASCII or Unicode string.
func (o *Object) IsString() bool {
	return o.Kind == KindASCII || o.Kind == KindUnicode
}

// Time converts a date object to a time.Time in UTC.
func (o *Object) Time() time.Time {
	return ReferenceEpoch.Add(time.Duration(o.Real * float64(time.Second)))
}

// Table is the decoded object table of one property list.
type Table struct {
	Objects []Object
	// Top is the index of the root object.
	Top int
}

// Object returns the object at index i, or false when i is out of range.
func (t *Table) Object(i int) (*Object, bool) {
	if i < 0 || i >= len(t.Objects) {
		return nil, false
	}
	return &t.Objects[i], true
}

// DictValue returns the value index stored under key in the dictionary at
// index i. Non-string keys are ignored.
func (t *Table) DictValue(i int, key string) (int, bool) {
	obj, ok := t.Object(i)
	if !ok || obj.Kind != KindDict {
		return 0, false
	}
	for n, k := range obj.Keys {
		ko := &t.Objects[k]
		if ko.IsString() && ko.Str == key {
			return obj.Values[n], true
		}
	}
	return 0, false
}
