// Package testutil provides shared test helpers: binary plist and keyed
// archive fixtures, and throwaway Agenda databases.
package testutil

import (
	"encoding/binary"
	"math"
	"time"
	"unicode/utf16"
)

// UID is a keyed-archiver reference into the $objects array.
type UID uint64

// Dict is a plist dictionary that keeps its insertion order.
type Dict struct {
	Keys   []string
	Values []any
}

// D builds a Dict from alternating key/value arguments.
func D(kv ...any) *Dict {
	d := &Dict{}
	for i := 0; i+1 < len(kv); i += 2 {
		d.Keys = append(d.Keys, kv[i].(string))
		d.Values = append(d.Values, kv[i+1])
	}
	return d
}

var referenceEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

type node struct {
	value any
	refs  []int
}

type flattener struct {
	nodes []*node
}

func (f *flattener) add(v any) int {
	idx := len(f.nodes)
	n := &node{value: v}
	f.nodes = append(f.nodes, n)
	switch x := v.(type) {
	case []any:
		for _, c := range x {
			n.refs = append(n.refs, f.add(c))
		}
	case *Dict:
		for _, k := range x.Keys {
			n.refs = append(n.refs, f.add(k))
		}
		for _, c := range x.Values {
			n.refs = append(n.refs, f.add(c))
		}
	}
	return idx
}

// EncodePlist serialises v as a binary plist. Supported values: nil, bool,
// int, int64, float64, time.Time, []byte, string, UID, []any and *Dict.
// Every value becomes its own object; nothing is deduplicated.
func EncodePlist(v any) []byte {
	f := &flattener{}
	f.add(v)

	refSize := widthFor(uint64(len(f.nodes)))
	objects := make([][]byte, len(f.nodes))
	for i, n := range f.nodes {
		objects[i] = encodeObject(n, refSize)
	}
	return AssemblePlist(objects, 0, refSize)
}

// AssemblePlist lays out pre-encoded objects behind the magic, appends the
// offset table and writes the trailer. Tests use it to build archives the
// encoder would never produce, such as reference cycles.
func AssemblePlist(objects [][]byte, top, refSize int) []byte {
	buf := []byte("bplist00")
	offsets := make([]uint64, len(objects))
	for i, o := range objects {
		offsets[i] = uint64(len(buf))
		buf = append(buf, o...)
	}

	tableStart := uint64(len(buf))
	offsetSize := widthFor(tableStart)
	for _, off := range offsets {
		buf = appendUint(buf, off, offsetSize)
	}

	tr := make([]byte, 32)
	tr[6] = byte(offsetSize)
	tr[7] = byte(refSize)
	binary.BigEndian.PutUint64(tr[8:], uint64(len(objects)))
	binary.BigEndian.PutUint64(tr[16:], uint64(top))
	binary.BigEndian.PutUint64(tr[24:], tableStart)
	return append(buf, tr...)
}

// RefObject encodes an array or dictionary marker whose members are the given
// object indices. Pass dict=true to encode len(refs)/2 key/value pairs.
func RefObject(dict bool, refSize int, refs ...int) []byte {
	var out []byte
	if dict {
		out = appendMarker(nil, 0xd0, uint64(len(refs)/2))
	} else {
		out = appendMarker(nil, 0xa0, uint64(len(refs)))
	}
	for _, r := range refs {
		out = appendUint(out, uint64(r), refSize)
	}
	return out
}

// StringObject encodes an ASCII string object.
func StringObject(s string) []byte {
	return append(appendMarker(nil, 0x50, uint64(len(s))), s...)
}

// UIDObject encodes a keyed-archiver UID object.
func UIDObject(uid uint64) []byte {
	return encodeObject(&node{value: UID(uid)}, 1)
}

func encodeObject(n *node, refSize int) []byte {
	switch v := n.value.(type) {
	case nil:
		return []byte{0x00}
	case bool:
		if v {
			return []byte{0x09}
		}
		return []byte{0x08}
	case int:
		return encodeInt(int64(v))
	case int64:
		return encodeInt(v)
	case float64:
		return appendUint([]byte{0x23}, math.Float64bits(v), 8)
	case time.Time:
		secs := v.Sub(referenceEpoch).Seconds()
		return appendUint([]byte{0x33}, math.Float64bits(secs), 8)
	case []byte:
		return append(appendMarker(nil, 0x40, uint64(len(v))), v...)
	case string:
		if isASCII(v) {
			return StringObject(v)
		}
		units := utf16.Encode([]rune(v))
		out := appendMarker(nil, 0x60, uint64(len(units)))
		for _, u := range units {
			out = appendUint(out, uint64(u), 2)
		}
		return out
	case UID:
		w := widthFor(uint64(v))
		return appendUint([]byte{0x80 | byte(w-1)}, uint64(v), w)
	case []any:
		return RefObject(false, refSize, n.refs...)
	case *Dict:
		return RefObject(true, refSize, n.refs...)
	}
	panic("testutil: unsupported plist value")
}

func encodeInt(v int64) []byte {
	switch {
	case v >= 0 && v <= math.MaxUint8:
		return []byte{0x10, byte(v)}
	case v >= 0 && v <= math.MaxUint16:
		return appendUint([]byte{0x11}, uint64(v), 2)
	case v >= 0 && v <= math.MaxUint32:
		return appendUint([]byte{0x12}, uint64(v), 4)
	}
	return appendUint([]byte{0x13}, uint64(v), 8)
}

func appendMarker(out []byte, kind byte, n uint64) []byte {
	if n < 0x0f {
		return append(out, kind|byte(n))
	}
	out = append(out, kind|0x0f)
	return append(out, encodeInt(int64(n))...)
}

func appendUint(out []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		out = append(out, byte(v>>(8*uint(i))))
	}
	return out
}

// widthFor returns the smallest of 1, 2, 4 or 8 bytes that can hold v.
func widthFor(v uint64) int {
	switch {
	case v <= math.MaxUint8:
		return 1
	case v <= math.MaxUint16:
		return 2
	case v <= math.MaxUint32:
		return 4
	}
	return 8
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
