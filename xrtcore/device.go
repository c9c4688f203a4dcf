// Package xrtcore defines the boundary between the Go bindings and the
// accelerator driver layer: the opaque Device every graph and profiling
// operation forwards to, the errno-carrying error type driver failures are
// reported with, and the registry where driver backends announce themselves.
//
// Nothing in this package executes graphs or touches hardware. Device
// context negotiation, DMA synchronization, AIE array reset and
// performance-counter multiplexing all live behind the Device interface,
// inside whatever backend was registered.
package xrtcore

import "github.com/google/uuid"

// GraphHandle identifies an open graph inside a driver backend. It is
// opaque to callers; only the Device that issued it can interpret it.
type GraphHandle uint64

// GraphAccessMode selects how a graph is shared between processes when it
// is opened.
type GraphAccessMode int

const (
	// GraphAccessExclusive gives the caller sole access to the graph.
	GraphAccessExclusive GraphAccessMode = iota

	// GraphAccessPrimary gives the caller full access while allowing
	// other processes shared (read-mostly) access.
	GraphAccessPrimary

	// GraphAccessShared gives the caller shared access: run-time
	// parameters can be read but graph execution is controlled elsewhere.
	GraphAccessShared
)

// String implements fmt.Stringer.
func (m GraphAccessMode) String() string {
	switch m {
	case GraphAccessExclusive:
		return "exclusive"
	case GraphAccessPrimary:
		return "primary"
	case GraphAccessShared:
		return "shared"
	}
	return "invalid"
}

// AIEAccessMode selects how the AIE array context is shared when it is
// opened on a device.
type AIEAccessMode int

const (
	AIEAccessExclusive AIEAccessMode = iota
	AIEAccessPrimary
	AIEAccessShared
)

// String implements fmt.Stringer.
func (m AIEAccessMode) String() string {
	switch m {
	case AIEAccessExclusive:
		return "exclusive"
	case AIEAccessPrimary:
		return "primary"
	case AIEAccessShared:
		return "shared"
	}
	return "invalid"
}

// BOSyncDirection gives the direction of a buffer-object synchronization
// over a GMIO port.
type BOSyncDirection int

const (
	// SyncGMIOToAIE moves data from global memory into the AIE array.
	SyncGMIOToAIE BOSyncDirection = iota

	// SyncAIEToGMIO moves data from the AIE array out to global memory.
	SyncAIEToGMIO
)

// String implements fmt.Stringer.
func (d BOSyncDirection) String() string {
	switch d {
	case SyncGMIOToAIE:
		return "gmio-to-aie"
	case SyncAIEToGMIO:
		return "aie-to-gmio"
	}
	return "invalid"
}

// BO is the view of a buffer object a Device needs to synchronize it over
// a GMIO port. Allocation and host access are owned by the backend that
// created the buffer.
type BO interface {
	// Size returns the size of the buffer in bytes.
	Size() uint64
}

// Device is the opaque driver device. Every operation in the aie and xcl
// packages is a forwarding call into one of these methods; failures are
// returned as errors that usually carry an errno (see Error and Code).
//
// Implementations must be safe for concurrent use: the handle tables in
// package xcl are process-wide and issue calls from multiple goroutines.
type Device interface {
	// OpenGraph opens the named graph of the hardware image identified
	// by xclbinUUID and returns the driver-level handle for it.
	OpenGraph(xclbinUUID uuid.UUID, name string, mode GraphAccessMode) (GraphHandle, error)

	// CloseGraph releases the graph context held by handle.
	CloseGraph(handle GraphHandle) error

	// ResetGraph resets the graph: disables its tiles and clears tile
	// synchronization state.
	ResetGraph(handle GraphHandle) error

	// GraphTimestamp returns the current timestamp of the graph in AIE
	// cycles.
	GraphTimestamp(handle GraphHandle) (uint64, error)

	// RunGraph starts graph execution for the given number of
	// iterations. Zero means run until the graph is ended explicitly.
	RunGraph(handle GraphHandle, iterations int) error

	// WaitGraphDone blocks until the current run completes or timeoutMS
	// milliseconds elapse. A zero timeout blocks indefinitely.
	WaitGraphDone(handle GraphHandle, timeoutMS int) error

	// WaitGraph blocks until the graph cycle counter reaches cycle, then
	// suspends the graph. Cycle zero waits for the current run to finish.
	WaitGraph(handle GraphHandle, cycle uint64) error

	// SuspendGraph suspends a running graph.
	SuspendGraph(handle GraphHandle) error

	// ResumeGraph resumes a suspended graph.
	ResumeGraph(handle GraphHandle) error

	// EndGraph waits for cycle as WaitGraph does, then terminates the
	// run so the graph must be reset before it can run again.
	EndGraph(handle GraphHandle, cycle uint64) error

	// UpdateGraphRTP writes data to the named run-time-parameter port.
	UpdateGraphRTP(handle GraphHandle, port string, data []byte) error

	// ReadGraphRTP reads len(data) bytes from the named
	// run-time-parameter port into data.
	ReadGraphRTP(handle GraphHandle, port string, data []byte) error

	// OpenAIEContext acquires the AIE array context on the device in the
	// given sharing mode.
	OpenAIEContext(mode AIEAccessMode) error

	// SyncBO synchronizes size bytes of bo at offset with the AIE array
	// through the named GMIO port, blocking until the DMA completes.
	SyncBO(bo BO, gmio string, dir BOSyncDirection, size, offset uint64) error

	// SyncBONB submits the same transfer as SyncBO without waiting for
	// completion; pair it with WaitGMIO.
	SyncBONB(bo BO, gmio string, dir BOSyncDirection, size, offset uint64) error

	// WaitGMIO blocks until the shim DMA channel of the named GMIO port
	// is idle.
	WaitGMIO(gmio string) error

	// ResetAIE resets the whole AIE array: disables columns, resets
	// shims and clears context state.
	ResetAIE() error

	// StartProfiling configures a performance counter. The meaning of the
	// port names and value depends on option; the returned handle feeds
	// ReadProfiling and StopProfiling.
	StartProfiling(option int, port1, port2 string, value uint32) (int, error)

	// ReadProfiling returns the current value of the performance counter.
	ReadProfiling(handle int) (uint64, error)

	// StopProfiling releases the performance counter and its hardware
	// resources.
	StopProfiling(handle int) error

	// Close releases the device.
	Close() error
}
