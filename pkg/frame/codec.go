package frame

import (
	"encoding/binary"
	"fmt"
)

// Binary layout of a descriptor record, little endian:
//
//	addr       u64
//	frame_size u16  (size and flag bits)
//	num_live   u16
//	live_ofs   u16 * num_live
//	num_allocs u8
//	alloc_lens u8 * num_allocs
//
// A table image is a u32 capacity, a u32 record count, then the records in
// insertion order. Replaying insertion order reproduces the exact probe
// placement of the producing side.

const tableMagic = 0x46445401 // "FDT" + version 1

// EncodeDescriptor appends the binary form of d to dst.
func EncodeDescriptor(dst []byte, d *Descriptor) ([]byte, error) {
	if len(d.LiveOffsets) > 0xFFFF {
		return nil, fmt.Errorf("too many live offsets: %d", len(d.LiveOffsets))
	}
	if len(d.AllocLens) > 0xFF {
		return nil, fmt.Errorf("too many combined allocations: %d", len(d.AllocLens))
	}

	dst = binary.LittleEndian.AppendUint64(dst, uint64(d.Addr))
	dst = binary.LittleEndian.AppendUint16(dst, d.FrameSize)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(d.LiveOffsets)))
	for _, ofs := range d.LiveOffsets {
		dst = binary.LittleEndian.AppendUint16(dst, ofs)
	}
	dst = append(dst, byte(len(d.AllocLens)))
	dst = append(dst, d.AllocLens...)
	return dst, nil
}

// DecodeDescriptor reads one record from src, returning the descriptor and
// the remaining bytes. Truncated input is an error, never a panic.
func DecodeDescriptor(src []byte) (*Descriptor, []byte, error) {
	if len(src) < 12 {
		return nil, nil, fmt.Errorf("truncated descriptor header: %d bytes", len(src))
	}

	d := &Descriptor{
		Addr:      Addr(binary.LittleEndian.Uint64(src)),
		FrameSize: binary.LittleEndian.Uint16(src[8:]),
	}
	numLive := int(binary.LittleEndian.Uint16(src[10:]))
	src = src[12:]

	if len(src) < 2*numLive {
		return nil, nil, fmt.Errorf("truncated live offsets: want %d entries, have %d bytes", numLive, len(src))
	}
	if numLive > 0 {
		d.LiveOffsets = make([]uint16, numLive)
		for i := range d.LiveOffsets {
			d.LiveOffsets[i] = binary.LittleEndian.Uint16(src[2*i:])
		}
	}
	src = src[2*numLive:]

	if len(src) < 1 {
		return nil, nil, fmt.Errorf("truncated allocation count")
	}
	numAllocs := int(src[0])
	src = src[1:]

	if len(src) < numAllocs {
		return nil, nil, fmt.Errorf("truncated allocation lengths: want %d, have %d bytes", numAllocs, len(src))
	}
	if numAllocs > 0 {
		d.AllocLens = append([]byte(nil), src[:numAllocs]...)
	}
	return d, src[numAllocs:], nil
}

// EncodeTable serializes a whole directory image: capacity, count, then the
// given descriptors in order.
func EncodeTable(capacity int, descriptors []*Descriptor) ([]byte, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("table capacity must be a power of two >= 2, got %d", capacity)
	}

	buf := binary.LittleEndian.AppendUint32(nil, tableMagic)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(capacity))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(descriptors)))

	var err error
	for _, d := range descriptors {
		buf, err = EncodeDescriptor(buf, d)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// DecodeTable parses a table image and rebuilds the directory, inserting
// records in stored order.
func DecodeTable(src []byte) (*Directory, error) {
	if len(src) < 12 {
		return nil, fmt.Errorf("truncated table header: %d bytes", len(src))
	}
	if magic := binary.LittleEndian.Uint32(src); magic != tableMagic {
		return nil, fmt.Errorf("bad table magic %#x", magic)
	}
	capacity := int(binary.LittleEndian.Uint32(src[4:]))
	count := int(binary.LittleEndian.Uint32(src[8:]))
	src = src[12:]

	dir, err := NewDirectory(capacity)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		var d *Descriptor
		d, src, err = DecodeDescriptor(src)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if err := dir.Insert(d); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return dir, nil
}
