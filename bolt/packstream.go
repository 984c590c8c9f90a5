package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Packstream markers used by the Route exchange. Only the subset of the
// format the routing core speaks is implemented here; the full message
// catalog lives with the connection layer.
const (
	markerTinyString = 0x80
	markerTinyList   = 0x90
	markerTinyMap    = 0xA0
	markerTinyStruct = 0xB0

	markerNull    = 0xC0
	markerFloat64 = 0xC1
	markerFalse   = 0xC2
	markerTrue    = 0xC3

	markerInt8  = 0xC8
	markerInt16 = 0xC9
	markerInt32 = 0xCA
	markerInt64 = 0xCB

	markerString8  = 0xD0
	markerString16 = 0xD1
	markerString32 = 0xD2

	markerList8  = 0xD4
	markerList16 = 0xD5
	markerList32 = 0xD6

	markerMap8  = 0xD8
	markerMap16 = 0xD9
	markerMap32 = 0xDA
)

// ErrMalformed indicates a structurally invalid packstream payload.
var ErrMalformed = errors.New("rudder/bolt: malformed packstream value")

// encoder appends packstream-encoded values to a byte buffer.
type encoder struct {
	buf []byte
}

func (e *encoder) bytes() []byte {
	return e.buf
}

func (e *encoder) writeStructHeader(fields int, tag byte) {
	// Route and its siblings never exceed 15 fields.
	e.buf = append(e.buf, byte(markerTinyStruct|fields), tag)
}

func (e *encoder) writeString(s string) {
	n := len(s)
	switch {
	case n < 16:
		e.buf = append(e.buf, byte(markerTinyString|n))
	case n <= math.MaxUint8:
		e.buf = append(e.buf, markerString8, byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, markerString16)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, markerString32)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
	e.buf = append(e.buf, s...)
}

func (e *encoder) writeListHeader(n int) {
	switch {
	case n < 16:
		e.buf = append(e.buf, byte(markerTinyList|n))
	case n <= math.MaxUint8:
		e.buf = append(e.buf, markerList8, byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, markerList16)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, markerList32)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
}

func (e *encoder) writeMapHeader(n int) {
	switch {
	case n < 16:
		e.buf = append(e.buf, byte(markerTinyMap|n))
	case n <= math.MaxUint8:
		e.buf = append(e.buf, markerMap8, byte(n))
	case n <= math.MaxUint16:
		e.buf = append(e.buf, markerMap16)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
	default:
		e.buf = append(e.buf, markerMap32)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	}
}

func (e *encoder) writeInt(v int64) {
	switch {
	case v >= -16 && v <= 127:
		e.buf = append(e.buf, byte(v))
	case v >= math.MinInt8 && v <= math.MaxInt8:
		e.buf = append(e.buf, markerInt8, byte(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		e.buf = append(e.buf, markerInt16)
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		e.buf = append(e.buf, markerInt32)
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(v))
	default:
		e.buf = append(e.buf, markerInt64)
		e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v))
	}
}

// structValue is a decoded packstream structure: a tag byte plus fields.
type structValue struct {
	tag    byte
	fields []any
}

// decoder consumes packstream values from a byte slice.
//
// Decoded values map to Go types as: string, int64, bool, float64, nil,
// []any, map[string]any and structValue.
type decoder struct {
	data []byte
	pos  int
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: unexpected end of input at offset %d", ErrMalformed, d.pos)
	}
	b := d.data[d.pos]
	d.pos++

	return b, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, fmt.Errorf("%w: truncated value at offset %d", ErrMalformed, d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n

	return b, nil
}

func (d *decoder) readLength(size int) (int, error) {
	b, err := d.readBytes(size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return int(b[0]), nil
	case 2:
		return int(binary.BigEndian.Uint16(b)), nil
	default:
		return int(binary.BigEndian.Uint32(b)), nil
	}
}

// decodeValue decodes the next value in the stream.
func (d *decoder) decodeValue() (any, error) {
	marker, err := d.readByte()
	if err != nil {
		return nil, err
	}

	// Tiny ints occupy the whole non-marker byte space.
	if marker < markerTinyString || marker >= 0xF0 {
		return int64(int8(marker)), nil
	}

	switch {
	case marker&0xF0 == markerTinyString:
		return d.decodeString(int(marker & 0x0F))
	case marker&0xF0 == markerTinyList:
		return d.decodeList(int(marker & 0x0F))
	case marker&0xF0 == markerTinyMap:
		return d.decodeMap(int(marker & 0x0F))
	case marker&0xF0 == markerTinyStruct:
		return d.decodeStruct(int(marker & 0x0F))
	}

	switch marker {
	case markerNull:
		return nil, nil
	case markerTrue:
		return true, nil
	case markerFalse:
		return false, nil
	case markerFloat64:
		b, err := d.readBytes(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case markerInt8:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return int64(int8(b)), nil
	case markerInt16:
		b, err := d.readBytes(2)
		if err != nil {
			return nil, err
		}
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case markerInt32:
		b, err := d.readBytes(4)
		if err != nil {
			return nil, err
		}
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	case markerInt64:
		b, err := d.readBytes(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case markerString8, markerString16, markerString32:
		n, err := d.readLength(1 << (marker - markerString8))
		if err != nil {
			return nil, err
		}
		return d.decodeString(n)
	case markerList8, markerList16, markerList32:
		n, err := d.readLength(1 << (marker - markerList8))
		if err != nil {
			return nil, err
		}
		return d.decodeList(n)
	case markerMap8, markerMap16, markerMap32:
		n, err := d.readLength(1 << (marker - markerMap8))
		if err != nil {
			return nil, err
		}
		return d.decodeMap(n)
	}

	return nil, fmt.Errorf("%w: unsupported marker 0x%02X at offset %d", ErrMalformed, marker, d.pos-1)
}

func (d *decoder) decodeString(n int) (string, error) {
	b, err := d.readBytes(n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (d *decoder) decodeList(n int) ([]any, error) {
	list := make([]any, 0, n)
	for range n {
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}

	return list, nil
}

func (d *decoder) decodeMap(n int) (map[string]any, error) {
	m := make(map[string]any, n)
	for range n {
		k, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("%w: map key is not a string", ErrMalformed)
		}
		v, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		m[key] = v
	}

	return m, nil
}

func (d *decoder) decodeStruct(fields int) (structValue, error) {
	tag, err := d.readByte()
	if err != nil {
		return structValue{}, err
	}
	s := structValue{tag: tag, fields: make([]any, 0, fields)}
	for range fields {
		v, err := d.decodeValue()
		if err != nil {
			return structValue{}, err
		}
		s.fields = append(s.fields, v)
	}

	return s, nil
}
