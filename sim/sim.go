// Package sim provides a software implementation of xrtcore.Device: an
// in-memory AIE device with graph state, RTP storage, GMIO transfer
// accounting and performance counters. It backs the package tests and the
// xrt-aie tool; it models driver semantics (states, errno codes), not
// hardware timing.
//
// Importing the package registers it as driver "sim".
package sim

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/xrtcore"
)

// DriverName is the name the backend registers under.
const DriverName = "sim"

// NumDevices is the number of devices the backend exposes.
const NumDevices = 2

// cyclesPerIteration is how far the simulated cycle counter advances per
// completed graph iteration.
const cyclesPerIteration = 8

func init() {
	xrtcore.Register(DriverName, driver{})
}

type driver struct{}

func (driver) DeviceCount() (int, error) {
	return NumDevices, nil
}

func (driver) OpenDevice(index uint) (xrtcore.Device, error) {
	if index >= NumDevices {
		return nil, xrtcore.Newf(unix.ENODEV, "no device at index %d (backend has %d)", index, NumDevices)
	}
	return NewDevice(index), nil
}

type graphStatus int

const (
	// graphStopped: configured, ready to run.
	graphStopped graphStatus = iota
	graphRunning
	graphSuspended
	// graphEnded: run terminated; reset required before the next run.
	graphEnded
)

type graphState struct {
	name      string
	xclbin    uuid.UUID
	mode      xrtcore.GraphAccessMode
	status    graphStatus
	remaining int // iterations left in the current run; -1 means run forever
}

type counterState struct {
	option     int
	port1      string
	port2      string
	value      uint32
	startCycle uint64
	startBytes uint64
}

// Device is a simulated AIE device. All methods are safe for concurrent
// use.
type Device struct {
	mu          sync.Mutex
	index       uint
	closed      bool
	contextOpen bool
	contextMode xrtcore.AIEAccessMode

	cycle       uint64
	graphs      map[xrtcore.GraphHandle]*graphState
	lastGraph   xrtcore.GraphHandle
	rtps        map[string]map[string][]byte // graph name -> port -> value, shared across contexts
	pending     map[string]uint64            // submitted, not yet drained GMIO bytes
	transferred map[string]uint64            // completed GMIO bytes
	counters    map[int]*counterState
	lastCounter int
}

var _ xrtcore.Device = (*Device)(nil)

// NewDevice returns a fresh simulated device. Devices from NewDevice are
// independent of the registered driver's index space.
func NewDevice(index uint) *Device {
	return &Device{
		index:       index,
		graphs:      make(map[xrtcore.GraphHandle]*graphState),
		rtps:        make(map[string]map[string][]byte),
		pending:     make(map[string]uint64),
		transferred: make(map[string]uint64),
		counters:    make(map[int]*counterState),
	}
}

// Index returns the device index.
func (d *Device) Index() uint {
	return d.index
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return fmt.Sprintf("sim device %d", d.index)
}

// checkOpen must be called with d.mu held.
func (d *Device) checkOpen() error {
	if d.closed {
		return xrtcore.New(unix.EBADF, "device is closed")
	}
	return nil
}

// graph must be called with d.mu held.
func (d *Device) graph(handle xrtcore.GraphHandle) (*graphState, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	g, ok := d.graphs[handle]
	if !ok {
		return nil, xrtcore.Newf(unix.EINVAL, "no such graph handle %d", handle)
	}
	return g, nil
}

func (d *Device) OpenGraph(xclbinUUID uuid.UUID, name string, mode xrtcore.GraphAccessMode) (xrtcore.GraphHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, xrtcore.New(unix.EINVAL, "empty graph name")
	}
	for _, g := range d.graphs {
		if g.name != name {
			continue
		}
		if g.mode == xrtcore.GraphAccessExclusive || mode == xrtcore.GraphAccessExclusive {
			return 0, xrtcore.Newf(unix.EBUSY, "graph %q is held exclusively", name)
		}
		if g.mode == xrtcore.GraphAccessPrimary && mode == xrtcore.GraphAccessPrimary {
			return 0, xrtcore.Newf(unix.EBUSY, "graph %q already has a primary context", name)
		}
	}
	d.lastGraph++
	handle := d.lastGraph
	d.graphs[handle] = &graphState{
		name:   name,
		xclbin: xclbinUUID,
		mode:   mode,
	}
	if d.rtps[name] == nil {
		d.rtps[name] = make(map[string][]byte)
	}
	return handle, nil
}

func (d *Device) CloseGraph(handle xrtcore.GraphHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.graph(handle); err != nil {
		return err
	}
	delete(d.graphs, handle)
	return nil
}

func (d *Device) ResetGraph(handle xrtcore.GraphHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	g.status = graphStopped
	g.remaining = 0
	return nil
}

func (d *Device) GraphTimestamp(handle xrtcore.GraphHandle) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.graph(handle); err != nil {
		return 0, err
	}
	return d.cycle, nil
}

func (d *Device) RunGraph(handle xrtcore.GraphHandle, iterations int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if iterations < 0 {
		return xrtcore.Newf(unix.EINVAL, "negative iteration count %d", iterations)
	}
	switch g.status {
	case graphRunning, graphSuspended:
		return xrtcore.Newf(unix.EBUSY, "graph %q is already running", g.name)
	case graphEnded:
		return xrtcore.Newf(unix.EINVAL, "graph %q was ended and must be reset before running", g.name)
	}
	g.status = graphRunning
	if iterations == 0 {
		g.remaining = -1
	} else {
		g.remaining = iterations
	}
	return nil
}

// finishRun completes the current run of g, advancing the cycle counter.
// Must be called with d.mu held; g must not be running forever.
func (d *Device) finishRun(g *graphState) {
	if g.status != graphRunning && g.status != graphSuspended {
		return
	}
	d.cycle += uint64(g.remaining) * cyclesPerIteration
	g.remaining = 0
	g.status = graphStopped
}

func (d *Device) WaitGraphDone(handle xrtcore.GraphHandle, timeoutMS int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if timeoutMS < 0 {
		return xrtcore.Newf(unix.EINVAL, "negative timeout %d ms", timeoutMS)
	}
	if g.remaining < 0 {
		return xrtcore.Newf(unix.ETIMEDOUT, "graph %q runs forever, not done after %d ms", g.name, timeoutMS)
	}
	d.finishRun(g)
	return nil
}

func (d *Device) WaitGraph(handle xrtcore.GraphHandle, cycle uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if cycle == 0 {
		if g.remaining < 0 {
			return xrtcore.Newf(unix.ETIMEDOUT, "graph %q runs forever", g.name)
		}
		d.finishRun(g)
		return nil
	}
	if d.cycle < cycle {
		d.cycle = cycle
	}
	if g.status == graphRunning {
		g.status = graphSuspended
	}
	return nil
}

func (d *Device) SuspendGraph(handle xrtcore.GraphHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if g.status != graphRunning {
		return xrtcore.Newf(unix.EINVAL, "graph %q is not running", g.name)
	}
	g.status = graphSuspended
	return nil
}

func (d *Device) ResumeGraph(handle xrtcore.GraphHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if g.status != graphSuspended {
		return xrtcore.Newf(unix.EINVAL, "graph %q is not suspended", g.name)
	}
	g.status = graphRunning
	return nil
}

func (d *Device) EndGraph(handle xrtcore.GraphHandle, cycle uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if d.cycle < cycle {
		d.cycle = cycle
	}
	if g.remaining > 0 {
		d.cycle += uint64(g.remaining) * cyclesPerIteration
	}
	g.remaining = 0
	g.status = graphEnded
	return nil
}

func (d *Device) UpdateGraphRTP(handle xrtcore.GraphHandle, port string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	if port == "" {
		return xrtcore.New(unix.EINVAL, "empty RTP port name")
	}
	if g.mode == xrtcore.GraphAccessShared {
		return xrtcore.Newf(unix.EPERM, "graph %q is open in shared mode, RTP ports are read-only", g.name)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	d.rtps[g.name][port] = buf
	return nil
}

func (d *Device) ReadGraphRTP(handle xrtcore.GraphHandle, port string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, err := d.graph(handle)
	if err != nil {
		return err
	}
	value, ok := d.rtps[g.name][port]
	if !ok {
		return xrtcore.Newf(unix.EINVAL, "no such RTP port %q on graph %q", port, g.name)
	}
	if len(data) != len(value) {
		return xrtcore.Newf(unix.EINVAL, "RTP port %q holds %d bytes, read asked for %d", port, len(value), len(data))
	}
	copy(data, value)
	return nil
}

func (d *Device) OpenAIEContext(mode xrtcore.AIEAccessMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.contextOpen {
		return xrtcore.Newf(unix.EBUSY, "AIE context already open in %s mode", d.contextMode)
	}
	d.contextOpen = true
	d.contextMode = mode
	return nil
}

// checkSync must be called with d.mu held.
func (d *Device) checkSync(bo xrtcore.BO, gmio string, size, offset uint64) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if bo == nil {
		return xrtcore.New(unix.EINVAL, "nil buffer object")
	}
	if gmio == "" {
		return xrtcore.New(unix.EINVAL, "empty GMIO port name")
	}
	if offset+size > bo.Size() {
		return xrtcore.Newf(unix.EINVAL, "sync range [%d, %d) exceeds BO size %d", offset, offset+size, bo.Size())
	}
	return nil
}

func (d *Device) SyncBO(bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkSync(bo, gmio, size, offset); err != nil {
		return err
	}
	d.transferred[gmio] += size
	d.cycle += size
	return nil
}

func (d *Device) SyncBONB(bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkSync(bo, gmio, size, offset); err != nil {
		return err
	}
	d.pending[gmio] += size
	return nil
}

func (d *Device) WaitGMIO(gmio string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	size := d.pending[gmio]
	d.pending[gmio] = 0
	d.transferred[gmio] += size
	d.cycle += size
	return nil
}

func (d *Device) ResetAIE() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	for _, g := range d.graphs {
		g.status = graphStopped
		g.remaining = 0
	}
	// Array reset tears down the performance counters with it.
	d.counters = make(map[int]*counterState)
	d.pending = make(map[string]uint64)
	return nil
}

func (d *Device) StartProfiling(option int, port1, port2 string, value uint32) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return -1, err
	}
	if option < 0 || option > 3 {
		return -1, xrtcore.Newf(unix.EINVAL, "unsupported profiling option %d", option)
	}
	if port1 == "" {
		return -1, xrtcore.New(unix.EINVAL, "empty profiling port name")
	}
	d.lastCounter++
	handle := d.lastCounter
	d.counters[handle] = &counterState{
		option:     option,
		port1:      port1,
		port2:      port2,
		value:      value,
		startCycle: d.cycle,
		startBytes: d.transferred[port1],
	}
	return handle, nil
}

func (d *Device) ReadProfiling(handle int) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	c, ok := d.counters[handle]
	if !ok {
		return 0, xrtcore.Newf(unix.EINVAL, "no such profiling handle %d", handle)
	}
	switch c.option {
	case 3: // stream running event count: one event per 32-bit word
		return (d.transferred[c.port1] - c.startBytes) / 4, nil
	case 2: // start difference: simulated streams start together
		return 0, nil
	default: // cycle-counting options
		return d.cycle - c.startCycle, nil
	}
}

func (d *Device) StopProfiling(handle int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOpen(); err != nil {
		return err
	}
	if _, ok := d.counters[handle]; !ok {
		return xrtcore.Newf(unix.EINVAL, "no such profiling handle %d", handle)
	}
	delete(d.counters, handle)
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
