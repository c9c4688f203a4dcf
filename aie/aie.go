package aie

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/unsatcore/xrt/xrtcore"
)

// OpenDevice opens device index of the named driver backend and acquires
// its AIE array context in the given sharing mode. The device is closed
// again if the context cannot be acquired.
func OpenDevice(driver string, index uint, mode xrtcore.AIEAccessMode) (xrtcore.Device, error) {
	device, err := xrtcore.Open(driver, index)
	if err != nil {
		return nil, err
	}
	if err := device.OpenAIEContext(mode); err != nil {
		if closeErr := device.Close(); closeErr != nil {
			klog.Errorf("closing device after failed AIE context open: %v", closeErr)
		}
		return nil, errors.WithMessagef(err, "opening AIE context (mode %s) on device %d of driver %q", mode, index, driver)
	}
	return device, nil
}

// SyncBO synchronizes size bytes of bo at offset with the AIE array
// through the named GMIO port. It blocks until the shim DMA transfer
// completes.
func SyncBO(device xrtcore.Device, bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	return errors.WithMessagef(device.SyncBO(bo, gmio, dir, size, offset), "syncing BO on GMIO port %q (%s)", gmio, dir)
}

// SyncBONB submits the same transfer as SyncBO without waiting. Upon
// return the transfer is submitted, not complete; use WaitGMIO to drain
// the channel.
func SyncBONB(device xrtcore.Device, bo xrtcore.BO, gmio string, dir xrtcore.BOSyncDirection, size, offset uint64) error {
	return errors.WithMessagef(device.SyncBONB(bo, gmio, dir, size, offset), "submitting BO sync on GMIO port %q (%s)", gmio, dir)
}

// WaitGMIO blocks until the shim DMA channel of the named GMIO port is
// idle.
func WaitGMIO(device xrtcore.Device, gmio string) error {
	return errors.WithMessagef(device.WaitGMIO(gmio), "waiting on GMIO port %q", gmio)
}

// ResetArray resets the whole AIE array of the device: disables columns,
// resets shims and clears context state. Open graphs on the array must be
// reconfigured afterwards.
func ResetArray(device xrtcore.Device) error {
	return errors.WithMessage(device.ResetAIE(), "resetting AIE array")
}
