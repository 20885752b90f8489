package frame

import "fmt"

// Directory is a fixed-capacity open-addressed index from return address
// to frame descriptor. Capacity is a power of two; collisions resolve by
// linear probing, so lookup order is deterministic for a given insertion
// history. The table is built once by the code generator side and only
// read afterwards.
type Directory struct {
	slots []*Descriptor
	mask  Addr
	used  int
}

// NewDirectory creates a directory with the given capacity, which must be
// a power of two and at least 2.
func NewDirectory(capacity int) (*Directory, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("directory capacity must be a power of two >= 2, got %d", capacity)
	}
	return &Directory{
		slots: make([]*Descriptor, capacity),
		mask:  Addr(capacity - 1),
	}, nil
}

// Capacity returns the fixed slot count of the table.
func (t *Directory) Capacity() int {
	return len(t.slots)
}

// Len returns the number of descriptors stored.
func (t *Directory) Len() int {
	return t.used
}

// hashAddr maps a return address to its home slot. Return addresses are
// word aligned, so the low bits carry no information.
func (t *Directory) hashAddr(addr Addr) Addr {
	return (addr >> 3) & t.mask
}

// Insert stores a descriptor under its return address. The table keeps one
// free slot so probing always terminates; inserting beyond capacity-1 or
// reusing an address is an error.
func (t *Directory) Insert(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("nil descriptor")
	}
	if t.used >= len(t.slots)-1 {
		return fmt.Errorf("directory full (%d of %d slots)", t.used, len(t.slots))
	}

	h := t.hashAddr(d.Addr)
	for t.slots[h] != nil {
		if t.slots[h].Addr == d.Addr {
			return fmt.Errorf("duplicate descriptor for address %#x", uintptr(d.Addr))
		}
		h = (h + 1) & t.mask
	}

	t.slots[h] = d
	t.used++
	return nil
}

// Find resolves a return address to its descriptor, probing linearly from
// the home slot. Returns nil when the address was never inserted.
func (t *Directory) Find(addr Addr) *Descriptor {
	h := t.hashAddr(addr)
	for i := 0; i < len(t.slots); i++ {
		d := t.slots[h]
		if d == nil {
			return nil
		}
		if d.Addr == addr {
			return d
		}
		h = (h + 1) & t.mask
	}
	return nil
}
