package frame

// Addr is a code return address as stored in generated frame tables.
type Addr uintptr

const (
	// AllocFlag marks a descriptor as an allocation frame: the site
	// performs a speculative young-heap bump before calling the runtime.
	AllocFlag = 0x2

	// SizeSentinel in the size/flags word marks an extended-info record
	// rather than a normal frame descriptor.
	SizeSentinel = 0xFFFF
)

// Descriptor describes one generated call site: its stack layout and,
// for allocation frames, the sizes combined into its single bump check.
type Descriptor struct {
	Addr        Addr     // return address keying this descriptor
	FrameSize   uint16   // frame size and flag bits (AllocFlag, SizeSentinel)
	LiveOffsets []uint16 // stack offsets of live values at this site
	AllocLens   []byte   // encoded word sizes, one per combined allocation
}

// IsAlloc reports whether the descriptor is a genuine allocation frame.
func (d *Descriptor) IsAlloc() bool {
	return d.FrameSize != SizeSentinel && d.FrameSize&AllocFlag != 0
}

// NumAllocs returns the number of allocations combined at this site.
// Zero means the site is a pure poll point.
func (d *Descriptor) NumAllocs() int {
	return len(d.AllocLens)
}

// DecodeAllocLen decodes one encoded length byte into a word count
// (the size of the allocated block, header excluded).
func DecodeAllocLen(b byte) int {
	return int(b) + 1
}

// EncodeAllocLen is the inverse of DecodeAllocLen. Word counts outside
// 1..256 cannot be encoded in a single byte.
func EncodeAllocLen(words int) (byte, bool) {
	if words < 1 || words > 256 {
		return 0, false
	}
	return byte(words - 1), true
}

// Whsize returns the block size in words including its header word.
func Whsize(wosize int) int {
	return wosize + 1
}

// TotalWords sums the full (header included) sizes of every allocation
// combined at this site. Zero for a poll site.
func (d *Descriptor) TotalWords() int {
	total := 0
	for _, b := range d.AllocLens {
		total += Whsize(DecodeAllocLen(b))
	}
	return total
}
