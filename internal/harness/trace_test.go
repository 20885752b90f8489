package harness

import (
	"testing"

	"dastgah/pkg/frame"
	"dastgah/pkg/machine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrace(t *testing.T) {
	input := `
# young-region pressure with a signal in flight
site 0x1000 3 5
site 0x2000          # poll site
exec 0x1000
signal 2
poll 0x2000
`
	tr, err := ParseTrace(input)
	require.NoError(t, err)

	require.Len(t, tr.Sites, 2)
	assert.Equal(t, frame.Addr(0x1000), tr.Sites[0].Addr)
	assert.Equal(t, frame.Whsize(3)+frame.Whsize(5), tr.Sites[0].TotalWords())
	assert.True(t, tr.Sites[0].IsAlloc())
	assert.Zero(t, tr.Sites[1].NumAllocs())

	assert.Equal(t, []machine.Event{
		{Op: machine.OpExec, Addr: 0x1000},
		{Op: machine.OpSignal, Num: 2},
		{Op: machine.OpPoll, Addr: 0x2000},
	}, tr.Events)
}

func TestParseTraceErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unknown directive", "bump 0x1000"},
		{"site without address", "site"},
		{"bad address", "exec zzz"},
		{"bad signal", "signal two"},
		{"exec arity", "exec 0x1000 0x2000"},
		{"duplicate site", "site 0x1000 2\nsite 0x1000 2"},
		{"unencodable size", "site 0x1000 300"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTrace(tc.input)
			assert.Error(t, err)
		})
	}
}
