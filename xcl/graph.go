package xcl

import (
	"time"

	"github.com/google/uuid"

	"github.com/unsatcore/xrt/aie"
	"github.com/unsatcore/xrt/xrtcore"
)

func openGraph(device xrtcore.Device, xclbinUUID uuid.UUID, name string, mode xrtcore.GraphAccessMode) (GraphHandle, error) {
	g, err := aie.OpenGraph(device, xclbinUUID, name, mode)
	if err != nil {
		return InvalidGraphHandle, fail(err)
	}
	return insertGraph(g), nil
}

// OpenGraph opens the named graph in primary access mode and returns its
// handle, or InvalidGraphHandle and an error.
func OpenGraph(device xrtcore.Device, xclbinUUID uuid.UUID, name string) (GraphHandle, error) {
	return openGraph(device, xclbinUUID, name, xrtcore.GraphAccessPrimary)
}

// OpenGraphExclusive opens the named graph in exclusive access mode.
func OpenGraphExclusive(device xrtcore.Device, xclbinUUID uuid.UUID, name string) (GraphHandle, error) {
	return openGraph(device, xclbinUUID, name, xrtcore.GraphAccessExclusive)
}

// OpenGraphShared opens the named graph in shared access mode.
func OpenGraphShared(device xrtcore.Device, xclbinUUID uuid.UUID, name string) (GraphHandle, error) {
	return openGraph(device, xclbinUUID, name, xrtcore.GraphAccessShared)
}

// CloseGraph removes the handle from the graph table and releases the
// graph context.
func CloseGraph(handle GraphHandle) error {
	g, err := removeGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Close(); err != nil {
		return fail(err)
	}
	return nil
}

// GraphReset resets the graph: disables its tiles and clears tile
// synchronization state.
func GraphReset(handle GraphHandle) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Reset(); err != nil {
		return fail(err)
	}
	return nil
}

// GraphTimestamp returns the current graph timestamp in AIE cycles.
func GraphTimestamp(handle GraphHandle) (uint64, error) {
	g, err := lookupGraph(handle)
	if err != nil {
		return 0, fail(err)
	}
	ts, err := g.Timestamp()
	if err != nil {
		return 0, fail(err)
	}
	return ts, nil
}

// GraphRun starts the graph for the given number of iterations; zero runs
// it until GraphEnd.
func GraphRun(handle GraphHandle, iterations int) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Run(iterations); err != nil {
		return fail(err)
	}
	return nil
}

// GraphWaitDone blocks until the current run finishes or timeoutMS
// milliseconds elapse.
func GraphWaitDone(handle GraphHandle, timeoutMS int) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.WaitDone(time.Duration(timeoutMS) * time.Millisecond); err != nil {
		return fail(err)
	}
	return nil
}

// GraphWait blocks until the graph cycle counter reaches cycle, then
// suspends the graph; cycle zero waits for the current run to finish.
func GraphWait(handle GraphHandle, cycle uint64) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Wait(cycle); err != nil {
		return fail(err)
	}
	return nil
}

// GraphSuspend suspends a running graph.
func GraphSuspend(handle GraphHandle) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Suspend(); err != nil {
		return fail(err)
	}
	return nil
}

// GraphResume resumes a suspended graph.
func GraphResume(handle GraphHandle) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.Resume(); err != nil {
		return fail(err)
	}
	return nil
}

// GraphEnd waits until the graph cycle counter reaches cycle, then
// terminates the run.
func GraphEnd(handle GraphHandle, cycle uint64) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.End(cycle); err != nil {
		return fail(err)
	}
	return nil
}

// GraphUpdateRTP writes data to the named run-time-parameter port of the
// graph.
func GraphUpdateRTP(handle GraphHandle, port string, data []byte) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	if err := g.UpdateRTP(port, data); err != nil {
		return fail(err)
	}
	return nil
}

// GraphReadRTP reads len(data) bytes from the named run-time-parameter
// port of the graph into data.
func GraphReadRTP(handle GraphHandle, port string, data []byte) error {
	g, err := lookupGraph(handle)
	if err != nil {
		return fail(err)
	}
	got, err := g.ReadRTP(port, len(data))
	if err != nil {
		return fail(err)
	}
	copy(data, got)
	return nil
}
