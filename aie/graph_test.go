package aie

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/sim"
	"github.com/unsatcore/xrt/xrtcore"
)

var testXclbin = uuid.MustParse("8d4d7e31-9a02-4cb9-a5a6-e45bb6a0c0aa")

func openTestGraph(t *testing.T) (*sim.Device, *Graph) {
	device := sim.NewDevice(0)
	g, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessPrimary)
	require.NoError(t, err)
	return device, g
}

func TestGraphRunWait(t *testing.T) {
	_, g := openTestGraph(t)
	defer func() { require.NoError(t, g.Close()) }()

	require.NoError(t, g.Run(3))
	require.NoError(t, g.WaitDone(0))

	// The sim device advances its cycle counter per completed iteration.
	ts, err := g.Timestamp()
	require.NoError(t, err)
	assert.EqualValues(t, 24, ts)
}

func TestGraphSuspendResumeEnd(t *testing.T) {
	_, g := openTestGraph(t)
	defer g.Close()

	// Suspend before the graph runs is an error.
	err := g.Suspend()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))

	require.NoError(t, g.Run(0)) // run until ended
	require.NoError(t, g.Suspend())
	require.NoError(t, g.Resume())

	// A free-running graph never finishes a timed wait.
	err = g.WaitDone(10 * time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, unix.ETIMEDOUT, xrtcore.Code(err))

	require.NoError(t, g.End(100))
	ts, err := g.Timestamp()
	require.NoError(t, err)
	assert.EqualValues(t, 100, ts)

	// An ended graph needs a reset before the next run.
	err = g.Run(1)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
	require.NoError(t, g.Reset())
	require.NoError(t, g.Run(1))
	require.NoError(t, g.WaitDone(0))
}

func TestGraphWaitCycleSuspends(t *testing.T) {
	_, g := openTestGraph(t)
	defer g.Close()

	require.NoError(t, g.Run(0))
	require.NoError(t, g.Wait(500))
	ts, err := g.Timestamp()
	require.NoError(t, err)
	assert.EqualValues(t, 500, ts)

	// Wait on a cycle leaves the graph suspended.
	require.NoError(t, g.Resume())
}

func TestGraphCloseIdempotent(t *testing.T) {
	_, g := openTestGraph(t)
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	err := g.Reset()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
	_, err = g.Timestamp()
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
}

func TestOpenGraphConflicts(t *testing.T) {
	device := sim.NewDevice(0)
	g, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessExclusive)
	require.NoError(t, err)
	defer g.Close()

	_, err = OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessShared)
	require.Error(t, err)
	assert.Equal(t, unix.EBUSY, xrtcore.Code(err))

	// A different graph name is unaffected.
	other, err := OpenGraph(device, testXclbin, "s2mm", xrtcore.GraphAccessShared)
	require.NoError(t, err)
	require.NoError(t, other.Close())
}

// waitRecorder records which driver wait entry point Graph.WaitDone picks.
type waitRecorder struct {
	*sim.Device
	waitCycles   []uint64
	waitTimeouts []int
}

func (w *waitRecorder) WaitGraph(h xrtcore.GraphHandle, cycle uint64) error {
	w.waitCycles = append(w.waitCycles, cycle)
	return w.Device.WaitGraph(h, cycle)
}

func (w *waitRecorder) WaitGraphDone(h xrtcore.GraphHandle, timeoutMS int) error {
	w.waitTimeouts = append(w.waitTimeouts, timeoutMS)
	return w.Device.WaitGraphDone(h, timeoutMS)
}

func TestWaitDoneDispatch(t *testing.T) {
	recorder := &waitRecorder{Device: sim.NewDevice(0)}
	g, err := OpenGraph(recorder, testXclbin, "mm2s", xrtcore.GraphAccessPrimary)
	require.NoError(t, err)
	defer g.Close()

	// A zero timeout forwards to the wait-on-cycle-0 entry point.
	require.NoError(t, g.WaitDone(0))
	assert.Equal(t, []uint64{0}, recorder.waitCycles)
	assert.Empty(t, recorder.waitTimeouts)

	require.NoError(t, g.WaitDone(25*time.Millisecond))
	assert.Equal(t, []int{25}, recorder.waitTimeouts)
	assert.Equal(t, []uint64{0}, recorder.waitCycles)
}

func BenchmarkGraphRunWait(b *testing.B) {
	device := sim.NewDevice(0)
	g, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessPrimary)
	if err != nil {
		b.Fatal(err)
	}
	defer g.Close()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.Run(1); err != nil {
			b.Fatal(err)
		}
		if err := g.WaitDone(0); err != nil {
			b.Fatal(err)
		}
	}
}
