package frame_test

import (
	"testing"

	"dastgah/pkg/frame"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocLenRoundTrip(t *testing.T) {
	for words := 1; words <= 256; words++ {
		b, ok := frame.EncodeAllocLen(words)
		require.True(t, ok, "word count %d must encode", words)
		assert.Equal(t, words, frame.DecodeAllocLen(b))
	}

	_, ok := frame.EncodeAllocLen(0)
	assert.False(t, ok)
	_, ok = frame.EncodeAllocLen(257)
	assert.False(t, ok)
}

func TestTotalWords(t *testing.T) {
	d := &frame.Descriptor{Addr: 0x1000, FrameSize: 0x10 | frame.AllocFlag}

	// A poll site requests nothing.
	assert.Equal(t, 0, d.TotalWords())
	assert.Equal(t, 0, d.NumAllocs())

	// Each combined allocation contributes its size plus a header word.
	sizes := []int{3, 5, 1}
	want := 0
	for _, w := range sizes {
		b, ok := frame.EncodeAllocLen(w)
		require.True(t, ok)
		d.AllocLens = append(d.AllocLens, b)
		want += frame.Whsize(w)
	}
	assert.Equal(t, want, d.TotalWords())
	assert.Equal(t, len(sizes), d.NumAllocs())
}

func TestIsAlloc(t *testing.T) {
	cases := []struct {
		name      string
		frameSize uint16
		want      bool
	}{
		{"allocation frame", 0x10 | frame.AllocFlag, true},
		{"non-allocation frame", 0x10, false},
		{"extended-info sentinel", frame.SizeSentinel, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &frame.Descriptor{FrameSize: tc.frameSize}
			assert.Equal(t, tc.want, d.IsAlloc())
		})
	}
}
