// Package keyedarchive reads records stored with the NSKeyedArchiver
// convention on top of a decoded binary plist.
//
// An archive is a dictionary holding "$archiver", "$version", "$top" and
// "$objects". "$top" maps "root" to a UID, which indexes "$objects" and
// names the archived record. Record fields are resolved lazily: only the
// path to a requested field is ever dereferenced.
package keyedarchive

import (
	"fmt"
	"time"

	"github.com/starford/agenda-search/internal/apperr"
	"github.com/starford/agenda-search/internal/bplist"
)

const (
	archiverName = "NSKeyedArchiver"
	nullSentinel = "$null"
	rootKey      = "root"
	classKey     = "$class"
)

// ValueKind identifies the type of a resolved field.
type ValueKind uint8

// Value kinds.
const (
	ValueBool ValueKind = iota + 1
	ValueInt
	ValueReal
	ValueString
	ValueData
	ValueDate
)

// Value is a resolved scalar.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Real float64
	Str  string
	Data []byte
	Time time.Time
}

// Record is one archived object whose fields can be looked up by name.
// A Record belongs to a single decode and is not safe for concurrent use.
type Record struct {
	table   *bplist.Table
	objects []int
	fields  map[string]int
}

// Open locates the root record of a keyed archive starting at t.Top.
func Open(t *bplist.Table) (*Record, error) {
	return Resolve(t, t.Top)
}

// Resolve locates the archived record whose archive dictionary is at top.
func Resolve(t *bplist.Table, top int) (*Record, error) {
	root, ok := t.Object(top)
	if !ok || root.Kind != bplist.KindDict {
		return nil, fmt.Errorf("keyedarchive: root is not a dictionary: %w", apperr.ErrMalformedArchive)
	}

	if i, ok := t.DictValue(top, "$archiver"); ok {
		if o := &t.Objects[i]; !o.IsString() || o.Str != archiverName {
			return nil, fmt.Errorf("keyedarchive: unknown archiver: %w", apperr.ErrMalformedArchive)
		}
	}

	objIdx, ok := t.DictValue(top, "$objects")
	if !ok || t.Objects[objIdx].Kind != bplist.KindArray {
		return nil, fmt.Errorf("keyedarchive: missing $objects: %w", apperr.ErrMalformedArchive)
	}
	topIdx, ok := t.DictValue(top, "$top")
	if !ok || t.Objects[topIdx].Kind != bplist.KindDict {
		return nil, fmt.Errorf("keyedarchive: missing $top: %w", apperr.ErrMalformedArchive)
	}

	r := &Record{table: t, objects: t.Objects[objIdx].Refs}

	rootRef, ok := t.DictValue(topIdx, rootKey)
	if !ok {
		// Some archivers name the single top-level entry differently.
		if tops := t.Objects[topIdx]; len(tops.Values) == 1 {
			rootRef, ok = tops.Values[0], true
		}
	}
	if !ok {
		return nil, fmt.Errorf("keyedarchive: $top has no root: %w", apperr.ErrMalformedArchive)
	}

	payload, err := r.follow(rootRef, map[int]bool{})
	if err != nil {
		return nil, err
	}
	obj := &t.Objects[payload]
	if obj.Kind != bplist.KindDict {
		return nil, fmt.Errorf("keyedarchive: root record is %s: %w", obj.Kind, apperr.ErrTypeMismatch)
	}

	r.fields = make(map[string]int, len(obj.Keys))
	for n, k := range obj.Keys {
		ko := &t.Objects[k]
		if !ko.IsString() {
			return nil, fmt.Errorf("keyedarchive: record key is %s: %w", ko.Kind, apperr.ErrMalformedArchive)
		}
		r.fields[ko.Str] = obj.Values[n]
	}
	return r, nil
}

// Has reports whether the record stores a field called name.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Lookup resolves the named field to a scalar. The boolean result is false
// when the field is missing or archived as nil.
func (r *Record) Lookup(name string) (Value, bool, error) {
	ref, ok := r.fields[name]
	if !ok {
		return Value{}, false, nil
	}
	v, ok, err := r.scalar(ref, map[int]bool{})
	if err != nil {
		return Value{}, false, fmt.Errorf("keyedarchive: field %q: %w", name, err)
	}
	return v, ok, nil
}

// Bool resolves a boolean field. A missing or nil field yields present=false.
func (r *Record) Bool(name string) (value, present bool, err error) {
	v, ok, err := r.Lookup(name)
	if err != nil || !ok {
		return false, false, err
	}
	if v.Kind != ValueBool {
		return false, true, fmt.Errorf("keyedarchive: field %q is not a bool: %w", name, apperr.ErrTypeMismatch)
	}
	return v.Bool, true, nil
}

// ClassName returns the archived class name of the record, if recorded.
func (r *Record) ClassName() (string, error) {
	ref, ok := r.fields[classKey]
	if !ok {
		return "", nil
	}
	idx, err := r.follow(ref, map[int]bool{})
	if err != nil {
		return "", err
	}
	nameIdx, ok := r.table.DictValue(idx, "$classname")
	if !ok {
		return "", fmt.Errorf("keyedarchive: class without $classname: %w", apperr.ErrMalformedArchive)
	}
	name := &r.table.Objects[nameIdx]
	if !name.IsString() {
		return "", fmt.Errorf("keyedarchive: $classname is %s: %w", name.Kind, apperr.ErrTypeMismatch)
	}
	return name.Str, nil
}

// follow dereferences UID chains starting at object index idx and returns
// the index of the first object that is not a UID. path holds the indices
// on the current resolution path.
func (r *Record) follow(idx int, path map[int]bool) (int, error) {
	for {
		if path[idx] {
			return 0, fmt.Errorf("keyedarchive: object %d: %w", idx, apperr.ErrCyclicReference)
		}
		path[idx] = true

		obj := &r.table.Objects[idx]
		if obj.Kind != bplist.KindUID {
			return idx, nil
		}
		if obj.UID >= uint64(len(r.objects)) {
			return 0, fmt.Errorf("keyedarchive: uid %d outside $objects: %w", obj.UID, apperr.ErrMalformedArchive)
		}
		idx = r.objects[obj.UID]
	}
}

// scalar resolves the object at idx to a plain value, unwrapping the
// common Foundation wrappers (NSDate, NSString, NSData).
func (r *Record) scalar(idx int, path map[int]bool) (Value, bool, error) {
	idx, err := r.follow(idx, path)
	if err != nil {
		return Value{}, false, err
	}
	obj := &r.table.Objects[idx]

	switch obj.Kind {
	case bplist.KindNull:
		return Value{}, false, nil
	case bplist.KindBool:
		return Value{Kind: ValueBool, Bool: obj.Bool}, true, nil
	case bplist.KindInt:
		return Value{Kind: ValueInt, Int: obj.Int}, true, nil
	case bplist.KindReal:
		return Value{Kind: ValueReal, Real: obj.Real}, true, nil
	case bplist.KindDate:
		return Value{Kind: ValueDate, Time: obj.Time()}, true, nil
	case bplist.KindData:
		return Value{Kind: ValueData, Data: obj.Data}, true, nil
	case bplist.KindASCII, bplist.KindUnicode:
		if obj.Str == nullSentinel {
			return Value{}, false, nil
		}
		return Value{Kind: ValueString, Str: obj.Str}, true, nil
	case bplist.KindDict:
		return r.wrapped(idx, path)
	}
	return Value{}, false, fmt.Errorf("%s where a scalar was expected: %w", obj.Kind, apperr.ErrTypeMismatch)
}

func (r *Record) wrapped(idx int, path map[int]bool) (Value, bool, error) {
	if ref, ok := r.table.DictValue(idx, "NS.time"); ok {
		t := &r.table.Objects[ref]
		switch t.Kind {
		case bplist.KindReal, bplist.KindDate:
			return Value{Kind: ValueDate, Time: bplist.ReferenceEpoch.Add(time.Duration(t.Real * float64(time.Second)))}, true, nil
		case bplist.KindInt:
			return Value{Kind: ValueDate, Time: bplist.ReferenceEpoch.Add(time.Duration(t.Int) * time.Second)}, true, nil
		}
		return Value{}, false, fmt.Errorf("NS.time is %s: %w", t.Kind, apperr.ErrTypeMismatch)
	}
	for _, key := range []string{"NS.string", "NS.bytes", "NS.data"} {
		if ref, ok := r.table.DictValue(idx, key); ok {
			return r.scalar(ref, path)
		}
	}
	return Value{}, false, fmt.Errorf("collection where a scalar was expected: %w", apperr.ErrTypeMismatch)
}
