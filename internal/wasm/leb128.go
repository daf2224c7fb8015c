package wasm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"fortio.org/safecast"
)

var errTruncated = errors.New("truncated wasm module")

// decoder walks a byte slice with LEB128-aware reads. All section
// payload parsing goes through it so offset bookkeeping stays in one
// place.
type decoder struct {
	data []byte
	off  int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) byte() (byte, error) {
	if d.off >= len(d.data) {
		return 0, errTruncated
	}
	b := d.data[d.off]
	d.off++
	return b, nil
}

// uleb reads an unsigned LEB128 value (same wire form as Go varints).
func (d *decoder) uleb() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		return 0, fmt.Errorf("bad LEB128 at offset %d", d.off)
	}
	d.off += n
	return v, nil
}

// count reads a LEB128 vector length as an int.
func (d *decoder) count() (int, error) {
	v, err := d.uleb()
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("vector length %d: %w", v, err)
	}
	if n > d.remaining() {
		return 0, errTruncated
	}
	return n, nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if n < 0 || n > d.remaining() {
		return nil, errTruncated
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) name() (string, error) {
	n, err := d.count()
	if err != nil {
		return "", err
	}
	b, err := d.bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
