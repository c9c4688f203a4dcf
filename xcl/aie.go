package xcl

import (
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/aie"
	"github.com/unsatcore/xrt/xrtcore"
)

// DeviceOpen opens device index of the named driver backend with the AIE
// context in primary access mode.
func DeviceOpen(driver string, index uint) (xrtcore.Device, error) {
	device, err := aie.OpenDevice(driver, index, xrtcore.AIEAccessPrimary)
	if err != nil {
		return nil, fail(err)
	}
	return device, nil
}

// DeviceOpenExclusive is DeviceOpen with the AIE context in exclusive
// access mode.
func DeviceOpenExclusive(driver string, index uint) (xrtcore.Device, error) {
	device, err := aie.OpenDevice(driver, index, xrtcore.AIEAccessExclusive)
	if err != nil {
		return nil, fail(err)
	}
	return device, nil
}

// DeviceOpenShared is DeviceOpen with the AIE context in shared access
// mode.
func DeviceOpenShared(driver string, index uint) (xrtcore.Device, error) {
	device, err := aie.OpenDevice(driver, index, xrtcore.AIEAccessShared)
	if err != nil {
		return nil, fail(err)
	}
	return device, nil
}

// SyncBO synchronizes size bytes of bo at offset between global memory and
// the AIE array through the named GMIO port, blocking until the transfer
// completes.
func SyncBO(device xrtcore.Device, bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	if err := aie.SyncBO(device, bo, gmio, dir, size, offset); err != nil {
		return fail(err)
	}
	return nil
}

// SyncBONB submits the same transfer as SyncBO without waiting for
// completion; upon return the transfer is submitted or the call errored
// out. Pair it with GMIOWait.
func SyncBONB(device xrtcore.Device, bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	if err := aie.SyncBONB(device, bo, gmio, dir, size, offset); err != nil {
		return fail(err)
	}
	return nil
}

// GMIOWait blocks until the shim DMA channel of the named GMIO port is
// idle.
func GMIOWait(device xrtcore.Device, gmio string) error {
	if err := aie.WaitGMIO(device, gmio); err != nil {
		return fail(err)
	}
	return nil
}

// ResetAIEArray resets the whole AIE array of the device.
func ResetAIEArray(device xrtcore.Device) error {
	if err := aie.ResetArray(device); err != nil {
		return fail(err)
	}
	return nil
}

// StartProfiling configures an AIE performance counter and inserts it
// into the profiling table under the driver-assigned handle. The port
// names and value mean different things per option; see
// aie.ProfilingOption.
func StartProfiling(device xrtcore.Device, option int, port1, port2 string, value uint32) (int, error) {
	if option < int(aie.IOTotalStreamRunningToIdleCycles) || option > int(aie.IOStreamRunningEventCount) {
		return aie.InvalidProfilingHandle, fail(xrtcore.New(unix.EINVAL, "not a valid profiling option"))
	}
	p := aie.NewProfiling(device)
	handle, err := p.Start(aie.ProfilingOption(option), port1, port2, value)
	if err != nil {
		return aie.InvalidProfilingHandle, fail(err)
	}
	if handle == aie.InvalidProfilingHandle {
		return aie.InvalidProfilingHandle, fail(xrtcore.New(unix.EINVAL, "not a valid profiling handle"))
	}
	insertProfiling(handle, p)
	return handle, nil
}

// ReadProfiling returns the current value of the performance counter
// behind the profiling handle.
func ReadProfiling(handle int) (uint64, error) {
	p, err := lookupProfiling(handle)
	if err != nil {
		return 0, fail(err)
	}
	value, err := p.Read()
	if err != nil {
		return 0, fail(err)
	}
	return value, nil
}

// StopProfiling stops the performance counter behind the profiling
// handle, releases its hardware resources and removes it from the
// profiling table.
func StopProfiling(handle int) error {
	p, err := lookupProfiling(handle)
	if err != nil {
		return fail(err)
	}
	if err := p.Stop(); err != nil {
		return fail(err)
	}
	removeProfiling(handle)
	return nil
}
