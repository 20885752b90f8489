package machine_test

import (
	"testing"

	"dastgah/pkg/frame"
	"dastgah/pkg/gc"
	"dastgah/pkg/machine"
	"dastgah/pkg/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	heapTop   = 1024
	heapLimit = 64
)

func buildDirectory(t *testing.T, descriptors ...*frame.Descriptor) *frame.Directory {
	t.Helper()
	dir, err := frame.NewDirectory(32)
	require.NoError(t, err)
	for _, d := range descriptors {
		require.NoError(t, dir.Insert(d))
	}
	return dir
}

func allocSite(t *testing.T, addr frame.Addr, sizes ...int) *frame.Descriptor {
	t.Helper()
	d := &frame.Descriptor{Addr: addr, FrameSize: 0x10 | frame.AllocFlag}
	for _, w := range sizes {
		b, ok := frame.EncodeAllocLen(w)
		require.True(t, ok)
		d.AllocLens = append(d.AllocLens, b)
	}
	return d
}

func TestExecFastPathSkipsRuntime(t *testing.T) {
	d := allocSite(t, 0x1000, 4)
	m := machine.NewMachine(buildDirectory(t, d), heapTop, heapLimit)

	m.Load([]machine.Event{{Op: machine.OpExec, Addr: d.Addr}})
	require.NoError(t, m.Run())

	assert.Zero(t, m.Collections(), "enough headroom: no collector interrupt")
	assert.Equal(t, heapTop-d.TotalWords(), m.Context().YoungPtr)
	assert.Equal(t, []frame.Addr{d.Addr}, m.Allocated())
}

func TestExecSlowPathCombinedAllocation(t *testing.T) {
	// Two combined allocations of 3 and 5 words; the cursor sits one
	// word above the limit, so the stub's bump crosses it.
	d := allocSite(t, 0x1000, 3, 5)
	m := machine.NewMachine(buildDirectory(t, d), heapTop, heapLimit)
	m.Context().YoungPtr = heapLimit + 1

	m.Load([]machine.Event{{Op: machine.OpExec, Addr: d.Addr}})
	require.NoError(t, m.Run())

	requested := frame.Whsize(3) + frame.Whsize(5)
	assert.Equal(t, 1, m.Collections(), "a full collection satisfies the request in one cycle")
	assert.Equal(t, heapTop-requested, m.Context().YoungPtr)
	assert.Zero(t, m.Context().Stack.Size(), "stub must pop its return address")
}

func TestExecRetriesWhenFinalizersEatSpace(t *testing.T) {
	d := allocSite(t, 0x1000, 6)
	requested := d.TotalWords()

	var states []gc.State
	m := machine.NewMachine(buildDirectory(t, d), heapTop, heapLimit,
		// First collection leaves one word short of the request.
		machine.WithCollectPlan([]int{requested - 1}),
		machine.WithResolverTrace(func(s gc.State) { states = append(states, s) }))
	m.Context().YoungPtr = heapLimit + 1

	m.Load([]machine.Event{{Op: machine.OpExec, Addr: d.Addr}})
	require.NoError(t, m.Run())

	assert.Equal(t, 2, m.Collections())
	assert.Equal(t, heapTop-requested, m.Context().YoungPtr)
	assert.Equal(t, []gc.State{
		gc.StateCollecting,
		gc.StateDraining,
		gc.StateChecking,
		gc.StateCollecting,
		gc.StateDraining,
		gc.StateChecking,
		gc.StateDone,
	}, states)
}

func TestSignalsDrainAtNextTrigger(t *testing.T) {
	d := allocSite(t, 0x1000, 2)
	poll := &frame.Descriptor{Addr: 0x2000, FrameSize: 0x10 | frame.AllocFlag}
	m := machine.NewMachine(buildDirectory(t, d, poll), heapTop, heapLimit)

	_, err := m.Signals().SetAction(2, signal.ActionRuntimeManaged)
	require.NoError(t, err)
	_, err = m.Signals().SetAction(15, signal.ActionRuntimeManaged)
	require.NoError(t, err)

	m.Load([]machine.Event{
		{Op: machine.OpSignal, Num: 2},
		{Op: machine.OpSignal, Num: 15},
		{Op: machine.OpSignal, Num: 9}, // no handler installed
		{Op: machine.OpPoll, Addr: poll.Addr},
	})
	require.NoError(t, m.Run())

	assert.ElementsMatch(t, []int{2, 15}, m.Drained())
	assert.Equal(t, []int{9}, m.Defaulted())
	assert.Equal(t, 1, m.Collections(), "a poll runs one interrupt cycle")
	assert.Equal(t, heapTop, m.Context().YoungPtr, "a poll leaves the cursor alone")
}

func TestUnknownSiteFails(t *testing.T) {
	m := machine.NewMachine(buildDirectory(t), heapTop, heapLimit)

	m.Load([]machine.Event{{Op: machine.OpExec, Addr: 0xBAD}})
	err := m.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, machine.ErrUnknownSite)
}

func TestPollOfAllocatingSiteFails(t *testing.T) {
	d := allocSite(t, 0x1000, 2)
	m := machine.NewMachine(buildDirectory(t, d), heapTop, heapLimit)

	m.Load([]machine.Event{{Op: machine.OpPoll, Addr: d.Addr}})
	assert.Error(t, m.Run())
}

func TestMaxSteps(t *testing.T) {
	m := machine.NewMachine(buildDirectory(t), heapTop, heapLimit,
		machine.WithMaxSteps(2))

	m.Load([]machine.Event{
		{Op: machine.OpNop},
		{Op: machine.OpNop},
		{Op: machine.OpNop},
	})
	err := m.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, machine.ErrMaxStepsExceeded)
}

func TestResetKeepsRegistrations(t *testing.T) {
	poll := &frame.Descriptor{Addr: 0x2000, FrameSize: 0x10 | frame.AllocFlag}
	m := machine.NewMachine(buildDirectory(t, poll), heapTop, heapLimit)

	_, err := m.Signals().SetAction(2, signal.ActionRuntimeManaged)
	require.NoError(t, err)

	program := []machine.Event{
		{Op: machine.OpSignal, Num: 2},
		{Op: machine.OpPoll, Addr: poll.Addr},
	}
	m.Load(program)
	require.NoError(t, m.Run())
	require.Equal(t, []int{2}, m.Drained())

	// Reload and run again: counters reset, the disposition survives.
	m.Load(program)
	require.NoError(t, m.Run())
	assert.Equal(t, []int{2}, m.Drained())
}
