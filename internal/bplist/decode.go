package bplist

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/starford/agenda-search/internal/apperr"
)

const (
	magic       = "bplist00"
	trailerSize = 32
)

// trailer mirrors the fixed 32 bytes at the end of every binary plist.
type trailer struct {
	offsetSize  int
	refSize     int
	numObjects  uint64
	topObject   uint64
	offsetTable uint64
}

type decoder struct {
	data    []byte
	trailer trailer
	// end is the first byte of the offset table; object encodings live before it.
	end int
}

// Decode parses data into an object table. Every reference stored in the
// table is checked to point at a valid index.
func Decode(data []byte) (*Table, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("bplist: bad magic: %w", apperr.ErrMalformedArchive)
	}
	if len(data) < len(magic)+trailerSize {
		return nil, fmt.Errorf("bplist: truncated trailer: %w", apperr.ErrMalformedArchive)
	}

	d := &decoder{data: data}
	if err := d.readTrailer(); err != nil {
		return nil, err
	}

	offsets, err := d.readOffsets()
	if err != nil {
		return nil, err
	}

	t := &Table{
		Objects: make([]Object, len(offsets)),
		Top:     int(d.trailer.topObject),
	}
	for i, off := range offsets {
		obj, err := d.readObject(off)
		if err != nil {
			return nil, fmt.Errorf("bplist: object %d: %w", i, err)
		}
		t.Objects[i] = obj
	}
	return t, nil
}

func (d *decoder) readTrailer() error {
	tr := d.data[len(d.data)-trailerSize:]
	d.trailer = trailer{
		offsetSize:  int(tr[6]),
		refSize:     int(tr[7]),
		numObjects:  binary.BigEndian.Uint64(tr[8:16]),
		topObject:   binary.BigEndian.Uint64(tr[16:24]),
		offsetTable: binary.BigEndian.Uint64(tr[24:32]),
	}

	switch {
	case d.trailer.offsetSize < 1 || d.trailer.offsetSize > 8:
		return fmt.Errorf("bplist: offset size %d: %w", d.trailer.offsetSize, apperr.ErrMalformedArchive)
	case d.trailer.refSize < 1 || d.trailer.refSize > 8:
		return fmt.Errorf("bplist: reference size %d: %w", d.trailer.refSize, apperr.ErrMalformedArchive)
	case d.trailer.numObjects == 0:
		return fmt.Errorf("bplist: empty object table: %w", apperr.ErrMalformedArchive)
	case d.trailer.topObject >= d.trailer.numObjects:
		return fmt.Errorf("bplist: top object %d out of range: %w", d.trailer.topObject, apperr.ErrMalformedArchive)
	}
	return nil
}

func (d *decoder) readOffsets() ([]int, error) {
	tableEnd := uint64(len(d.data) - trailerSize)
	start := d.trailer.offsetTable
	if start < uint64(len(magic)) || start > tableEnd {
		return nil, fmt.Errorf("bplist: offset table at %d outside buffer: %w", start, apperr.ErrMalformedArchive)
	}
	// Each object needs at least one marker byte, which bounds numObjects
	// before the multiplication below can overflow.
	if d.trailer.numObjects > tableEnd ||
		d.trailer.numObjects*uint64(d.trailer.offsetSize) > tableEnd-start {
		return nil, fmt.Errorf("bplist: offset table truncated: %w", apperr.ErrMalformedArchive)
	}
	d.end = int(start)

	n := int(d.trailer.numObjects)
	offsets := make([]int, n)
	pos := int(start)
	for i := range offsets {
		off := readUint(d.data[pos : pos+d.trailer.offsetSize])
		if off < uint64(len(magic)) || off >= uint64(d.end) {
			return nil, fmt.Errorf("bplist: offset %d of object %d outside buffer: %w", off, i, apperr.ErrMalformedArchive)
		}
		offsets[i] = int(off)
		pos += d.trailer.offsetSize
	}
	return offsets, nil
}

// need returns data[pos:pos+n] or a malformed-archive error when the
// region runs past the object area.
func (d *decoder) need(pos int, n uint64) ([]byte, error) {
	if n > uint64(d.end) || uint64(pos) > uint64(d.end)-n {
		return nil, fmt.Errorf("bplist: %d bytes at %d exceed buffer: %w", n, pos, apperr.ErrMalformedArchive)
	}
	return d.data[pos : pos+int(n)], nil
}

func (d *decoder) readObject(pos int) (Object, error) {
	marker := d.data[pos]
	high, low := marker>>4, marker&0x0f
	pos++

	switch high {
	case 0x0:
		switch low {
		case 0x0:
			return Object{Kind: KindNull}, nil
		case 0x8:
			return Object{Kind: KindBool, Bool: false}, nil
		case 0x9:
			return Object{Kind: KindBool, Bool: true}, nil
		}
	case 0x1:
		v, _, err := d.readInt(pos, low)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindInt, Int: v}, nil
	case 0x2:
		v, err := d.readReal(pos, low)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindReal, Real: v}, nil
	case 0x3:
		if low != 0x3 {
			break
		}
		v, err := d.readReal(pos, 3)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindDate, Real: v}, nil
	case 0x4:
		n, start, err := d.readLength(pos, low)
		if err != nil {
			return Object{}, err
		}
		b, err := d.need(start, n)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindData, Data: append([]byte(nil), b...)}, nil
	case 0x5:
		n, start, err := d.readLength(pos, low)
		if err != nil {
			return Object{}, err
		}
		b, err := d.need(start, n)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindASCII, Str: string(b)}, nil
	case 0x6:
		n, start, err := d.readLength(pos, low)
		if err != nil {
			return Object{}, err
		}
		if n > math.MaxInt32 {
			return Object{}, fmt.Errorf("bplist: string length %d: %w", n, apperr.ErrMalformedArchive)
		}
		b, err := d.need(start, 2*n)
		if err != nil {
			return Object{}, err
		}
		units := make([]uint16, n)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[2*i:])
		}
		return Object{Kind: KindUnicode, Str: string(utf16.Decode(units))}, nil
	case 0x8:
		b, err := d.need(pos, uint64(low)+1)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindUID, UID: readUint(b)}, nil
	case 0xa, 0xc:
		// Sets are read as arrays; member order is the encoded order.
		n, start, err := d.readLength(pos, low)
		if err != nil {
			return Object{}, err
		}
		refs, err := d.readRefs(start, n)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindArray, Refs: refs}, nil
	case 0xd:
		n, start, err := d.readLength(pos, low)
		if err != nil {
			return Object{}, err
		}
		if n > math.MaxInt32 {
			return Object{}, fmt.Errorf("bplist: dict size %d: %w", n, apperr.ErrMalformedArchive)
		}
		refs, err := d.readRefs(start, 2*n)
		if err != nil {
			return Object{}, err
		}
		return Object{Kind: KindDict, Keys: refs[:n:n], Values: refs[n:]}, nil
	}

	return Object{}, fmt.Errorf("bplist: marker 0x%02x: %w", marker, apperr.ErrUnsupportedType)
}

// readInt decodes an integer of 2^exp bytes at pos. One, two and four byte
// integers are unsigned; eight byte integers are signed. Sixteen byte
// integers keep their low 64 bits.
func (d *decoder) readInt(pos int, exp byte) (int64, int, error) {
	if exp > 4 {
		return 0, 0, fmt.Errorf("bplist: int width 2^%d: %w", exp, apperr.ErrUnsupportedType)
	}
	width := 1 << exp
	b, err := d.need(pos, uint64(width))
	if err != nil {
		return 0, 0, err
	}
	if width == 16 {
		b = b[8:]
	}
	return int64(readUint(b)), pos + width, nil
}

func (d *decoder) readReal(pos int, exp byte) (float64, error) {
	switch exp {
	case 2:
		b, err := d.need(pos, 4)
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 3:
		b, err := d.need(pos, 8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}
	return 0, fmt.Errorf("bplist: real width 2^%d: %w", exp, apperr.ErrUnsupportedType)
}

// readLength returns the element count encoded in the marker's low nibble,
// or in the integer object that follows when the nibble is 0xf, together
// with the position of the first payload byte.
func (d *decoder) readLength(pos int, low byte) (uint64, int, error) {
	if low != 0x0f {
		return uint64(low), pos, nil
	}
	b, err := d.need(pos, 1)
	if err != nil {
		return 0, 0, err
	}
	if b[0]>>4 != 0x1 {
		return 0, 0, fmt.Errorf("bplist: length marker 0x%02x: %w", b[0], apperr.ErrMalformedArchive)
	}
	v, next, err := d.readInt(pos+1, b[0]&0x0f)
	if err != nil {
		return 0, 0, err
	}
	if v < 0 {
		return 0, 0, fmt.Errorf("bplist: negative length: %w", apperr.ErrMalformedArchive)
	}
	return uint64(v), next, nil
}

func (d *decoder) readRefs(pos int, n uint64) ([]int, error) {
	size := d.trailer.refSize
	if n > uint64(d.end) {
		return nil, fmt.Errorf("bplist: %d references exceed buffer: %w", n, apperr.ErrMalformedArchive)
	}
	b, err := d.need(pos, n*uint64(size))
	if err != nil {
		return nil, err
	}
	refs := make([]int, n)
	for i := range refs {
		r := readUint(b[i*size : (i+1)*size])
		if r >= d.trailer.numObjects {
			return nil, fmt.Errorf("bplist: reference %d out of range: %w", r, apperr.ErrMalformedArchive)
		}
		refs[i] = int(r)
	}
	return refs, nil
}

func readUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
