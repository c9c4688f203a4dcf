package aie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/sim"
	"github.com/unsatcore/xrt/xrtcore"
)

func TestProfilingLifecycle(t *testing.T) {
	device := sim.NewDevice(0)
	p := NewProfiling(device)

	// Not started yet: no valid handle.
	assert.Equal(t, InvalidProfilingHandle, p.Handle())
	_, err := p.Read()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
	err = p.Stop()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))

	handle, err := p.Start(IOStreamRunningEventCount, "gmio0", "", 0)
	require.NoError(t, err)
	assert.NotEqual(t, InvalidProfilingHandle, handle)
	assert.Equal(t, handle, p.Handle())

	// One stream event per 32-bit word moved through the port.
	bo := sim.NewBO(64)
	require.NoError(t, SyncBO(device, bo, "gmio0", xrtcore.SyncGMIOToAIE, 64, 0))
	events, err := p.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 16, events)

	require.NoError(t, p.Stop())
	assert.Equal(t, InvalidProfilingHandle, p.Handle())

	// Stopped counters reject further reads and stops.
	_, err = p.Read()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
	err = p.Stop()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
}

func TestProfilingCycleCounter(t *testing.T) {
	device := sim.NewDevice(0)
	g, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessPrimary)
	require.NoError(t, err)
	defer g.Close()

	p := NewProfiling(device)
	_, err = p.Start(IOTotalStreamRunningToIdleCycles, "gmio0", "", 0)
	require.NoError(t, err)

	require.NoError(t, g.Run(4))
	require.NoError(t, g.WaitDone(0))

	cycles, err := p.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 32, cycles)
	require.NoError(t, p.Stop())
}

func TestProfilingCountsOnlyDrainedTransfers(t *testing.T) {
	device := sim.NewDevice(0)
	p := NewProfiling(device)
	_, err := p.Start(IOStreamRunningEventCount, "gmio1", "", 0)
	require.NoError(t, err)

	bo := sim.NewBO(128)
	require.NoError(t, SyncBONB(device, bo, "gmio1", xrtcore.SyncAIEToGMIO, 128, 0))

	// Submitted but not drained: the counter has not moved.
	events, err := p.Read()
	require.NoError(t, err)
	assert.Zero(t, events)

	require.NoError(t, WaitGMIO(device, "gmio1"))
	events, err = p.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 32, events)
	require.NoError(t, p.Stop())
}
