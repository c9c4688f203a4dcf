// Package aie exposes graph execution and performance profiling on the
// AI-Engine array of an accelerator device. Graph and Profiling are thin
// wrappers holding shared ownership of an xrtcore.Device; every method is
// a forwarding call into the device, with driver failures annotated and
// returned as errors.
package aie

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"

	"github.com/unsatcore/xrt/xrtcore"
)

// Graph is an open graph context on a device. It stays valid until Close
// is called; a finalizer closes leaked graphs so the driver context is not
// held forever, but relying on it is a bug in the caller.
type Graph struct {
	device xrtcore.Device
	handle xrtcore.GraphHandle
	name   string
}

// OpenGraph opens the named graph of the hardware image identified by
// xclbinUUID on the device.
func OpenGraph(device xrtcore.Device, xclbinUUID uuid.UUID, name string, mode xrtcore.GraphAccessMode) (*Graph, error) {
	handle, err := device.OpenGraph(xclbinUUID, name, mode)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening graph %q (xclbin %s, mode %s)", name, xclbinUUID, mode)
	}
	g := &Graph{device: device, handle: handle, name: name}
	runtime.SetFinalizer(g, finalizeGraph)
	return g, nil
}

func finalizeGraph(g *Graph) {
	if g.device == nil {
		return
	}
	klog.Warningf("graph %q garbage collected without Close, closing now", g.name)
	if err := g.Close(); err != nil {
		klog.Errorf("closing leaked graph %q: %v", g.name, err)
	}
}

// dev returns the device, or fails when the graph was already closed.
func (g *Graph) dev() (xrtcore.Device, error) {
	if g.device == nil {
		return nil, xrtcore.Newf(unix.EINVAL, "graph %q is closed", g.name)
	}
	return g.device, nil
}

// Handle returns the driver-level handle of the graph.
func (g *Graph) Handle() xrtcore.GraphHandle {
	return g.handle
}

// Name returns the name the graph was opened with.
func (g *Graph) Name() string {
	return g.name
}

// Close releases the graph context. Closing an already-closed graph is a
// no-op.
func (g *Graph) Close() error {
	if g.device == nil {
		return nil
	}
	defer runtime.KeepAlive(g)
	err := g.device.CloseGraph(g.handle)
	g.device = nil
	return errors.WithMessagef(err, "closing graph %q", g.name)
}

// Reset resets the graph: disables its tiles and clears tile
// synchronization state.
func (g *Graph) Reset() error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return device.ResetGraph(g.handle)
}

// Timestamp returns the current graph timestamp in AIE cycles.
func (g *Graph) Timestamp() (uint64, error) {
	device, err := g.dev()
	if err != nil {
		return 0, err
	}
	return device.GraphTimestamp(g.handle)
}

// Run starts the graph for the given number of iterations. Zero iterations
// runs the graph until End is called.
func (g *Graph) Run(iterations int) error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return errors.WithMessagef(device.RunGraph(g.handle, iterations), "running graph %q", g.name)
}

// WaitDone blocks until the current run finishes or the timeout elapses.
// A zero timeout waits for the run to finish with no deadline (it forwards
// to a wait on cycle 0, matching the driver's overload for "wait forever").
func (g *Graph) WaitDone(timeout time.Duration) error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	if timeout == 0 {
		return device.WaitGraph(g.handle, 0)
	}
	return device.WaitGraphDone(g.handle, int(timeout.Milliseconds()))
}

// Wait blocks until the graph cycle counter reaches cycle, then suspends
// the graph. Cycle zero waits for the current run to finish.
func (g *Graph) Wait(cycle uint64) error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return device.WaitGraph(g.handle, cycle)
}

// Suspend suspends a running graph.
func (g *Graph) Suspend() error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return device.SuspendGraph(g.handle)
}

// Resume resumes a suspended graph.
func (g *Graph) Resume() error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return device.ResumeGraph(g.handle)
}

// End waits until the graph cycle counter reaches cycle, then terminates
// the run. The graph must be reset before it can run again. Cycle zero
// ends the run as soon as the current iteration completes.
func (g *Graph) End(cycle uint64) error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return device.EndGraph(g.handle, cycle)
}

// UpdateRTP writes raw bytes to the named run-time-parameter port. See
// UpdatePort for the typed variant.
func (g *Graph) UpdateRTP(port string, data []byte) error {
	device, err := g.dev()
	if err != nil {
		return err
	}
	return errors.WithMessagef(device.UpdateGraphRTP(g.handle, port, data), "updating RTP port %q of graph %q", port, g.name)
}

// ReadRTP reads size raw bytes from the named run-time-parameter port.
func (g *Graph) ReadRTP(port string, size int) ([]byte, error) {
	device, err := g.dev()
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := device.ReadGraphRTP(g.handle, port, data); err != nil {
		return nil, errors.WithMessagef(err, "reading RTP port %q of graph %q", port, g.name)
	}
	return data, nil
}
