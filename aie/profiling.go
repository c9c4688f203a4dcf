package aie

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/xrtcore"
)

// ProfilingOption selects what an AIE performance counter measures. The
// port names and trigger value passed to Profiling.Start mean different
// things per option.
type ProfilingOption int

const (
	// IOTotalStreamRunningToIdleCycles counts the cycles port1 spends
	// between running and idle.
	IOTotalStreamRunningToIdleCycles ProfilingOption = iota

	// IOStreamStartToBytesTransferredCycles counts the cycles from
	// stream start on port1 until value bytes have been transferred.
	IOStreamStartToBytesTransferredCycles

	// IOStreamStartDifferenceCycles counts the cycle difference between
	// the starts of the port1 and port2 streams.
	IOStreamStartDifferenceCycles

	// IOStreamRunningEventCount counts stream running events on port1
	// (GMIO and PLIO).
	IOStreamRunningEventCount
)

// InvalidProfilingHandle is the handle of a Profiling that has not been
// started, or has been stopped.
const InvalidProfilingHandle = -1

// Profiling drives one AIE performance counter on a device. A Profiling
// owns at most one counter at a time, between Start and Stop.
type Profiling struct {
	device xrtcore.Device
	handle int
}

// NewProfiling returns a Profiling for the device. No hardware resources
// are claimed until Start.
func NewProfiling(device xrtcore.Device) *Profiling {
	p := &Profiling{device: device, handle: InvalidProfilingHandle}
	// Leaked profiling objects release their counter; errors are dropped,
	// there is nobody left to report them to.
	runtime.SetFinalizer(p, func(p *Profiling) {
		if p.handle != InvalidProfilingHandle {
			_ = p.device.StopProfiling(p.handle)
		}
	})
	return p
}

// Start configures the performance counter and returns the driver-assigned
// profiling handle.
func (p *Profiling) Start(option ProfilingOption, port1, port2 string, value uint32) (int, error) {
	handle, err := p.device.StartProfiling(int(option), port1, port2, value)
	if err != nil {
		return InvalidProfilingHandle, errors.WithMessagef(err, "starting profiling (option %d, ports %q/%q)", option, port1, port2)
	}
	p.handle = handle
	return handle, nil
}

// Handle returns the driver-assigned profiling handle, or
// InvalidProfilingHandle when the counter is not running.
func (p *Profiling) Handle() int {
	return p.handle
}

// Read returns the current performance counter value.
func (p *Profiling) Read() (uint64, error) {
	if p.handle == InvalidProfilingHandle {
		return 0, xrtcore.New(unix.EINVAL, "not a valid profiling handle")
	}
	defer runtime.KeepAlive(p)
	return p.device.ReadProfiling(p.handle)
}

// Stop stops the counter and releases its hardware resources.
func (p *Profiling) Stop() error {
	if p.handle == InvalidProfilingHandle {
		return xrtcore.New(unix.EINVAL, "not a valid profiling handle")
	}
	defer runtime.KeepAlive(p)
	if err := p.device.StopProfiling(p.handle); err != nil {
		return err
	}
	p.handle = InvalidProfilingHandle
	return nil
}
