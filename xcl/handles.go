// Package xcl is the shim-level surface of the AIE bindings: flat
// functions over opaque integer handles, in the style of the C driver
// API. It keeps two process-wide tables -- graph handles and profiling
// handles -- mapping handles to shared ownership of the aie wrapper
// objects, and translates every failure into an errno-coded error (see
// Errno).
//
// A handle is valid exactly between the call that opened it and its
// matching close call. Graph handles must be closed before the device
// they were opened on.
package xcl

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/aie"
	"github.com/unsatcore/xrt/xrtcore"
)

// GraphHandle identifies an open graph in the process-wide graph table.
type GraphHandle uint64

// InvalidGraphHandle is returned by the OpenGraph variants on failure.
const InvalidGraphHandle GraphHandle = 0

var (
	mu sync.Mutex

	// Graphs opened through the OpenGraph variants. CloseGraph must be
	// called before the device is closed.
	graphTable = make(map[GraphHandle]*aie.Graph)

	// Profilings started through StartProfiling, keyed by the
	// driver-assigned profiling handle.
	profilingTable = make(map[int]*aie.Profiling)

	// lastGraphHandle feeds the graph handle sequence; handle 0 is
	// reserved as InvalidGraphHandle.
	lastGraphHandle atomic.Uint64
)

func insertGraph(g *aie.Graph) GraphHandle {
	handle := GraphHandle(lastGraphHandle.Add(1))
	mu.Lock()
	graphTable[handle] = g
	mu.Unlock()
	return handle
}

func lookupGraph(handle GraphHandle) (*aie.Graph, error) {
	mu.Lock()
	g, ok := graphTable[handle]
	mu.Unlock()
	if !ok {
		return nil, xrtcore.New(unix.EINVAL, "no such graph handle")
	}
	return g, nil
}

func removeGraph(handle GraphHandle) (*aie.Graph, error) {
	mu.Lock()
	g, ok := graphTable[handle]
	if ok {
		delete(graphTable, handle)
	}
	mu.Unlock()
	if !ok {
		// A close of a handle that was never opened (or was closed twice)
		// is caller corruption, not a driver errno.
		return nil, errors.New("unexpected internal error")
	}
	return g, nil
}

func insertProfiling(handle int, p *aie.Profiling) {
	mu.Lock()
	profilingTable[handle] = p
	mu.Unlock()
}

func lookupProfiling(handle int) (*aie.Profiling, error) {
	mu.Lock()
	p, ok := profilingTable[handle]
	mu.Unlock()
	if !ok {
		return nil, xrtcore.New(unix.EINVAL, "no such profiling handle")
	}
	return p, nil
}

func removeProfiling(handle int) {
	mu.Lock()
	delete(profilingTable, handle)
	mu.Unlock()
}
