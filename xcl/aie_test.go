package xcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/aie"
	"github.com/unsatcore/xrt/sim"
	"github.com/unsatcore/xrt/xrtcore"
)

func TestDeviceOpenModes(t *testing.T) {
	for _, open := range []func(string, uint) (xrtcore.Device, error){
		DeviceOpen, DeviceOpenExclusive, DeviceOpenShared,
	} {
		device, err := open(sim.DriverName, 0)
		require.NoError(t, err)
		require.NoError(t, device.Close())
	}

	_, err := DeviceOpen(sim.DriverName, sim.NumDevices)
	require.Error(t, err)
	assert.Equal(t, unix.ENODEV, Errno(err))

	_, err = DeviceOpen("no-such-driver", 0)
	require.Error(t, err)
	assert.Equal(t, unix.EIO, Errno(err))
}

func TestStartProfilingValidatesOption(t *testing.T) {
	device := sim.NewDevice(0)

	for _, option := range []int{-1, 4, 99} {
		handle, err := StartProfiling(device, option, "gmio0", "", 0)
		require.Error(t, err, "option %d", option)
		assert.Equal(t, unix.EINVAL, Errno(err))
		assert.Equal(t, aie.InvalidProfilingHandle, handle)
	}
}

func TestProfilingHandleLifecycle(t *testing.T) {
	device := sim.NewDevice(0)

	handle, err := StartProfiling(device, int(aie.IOStreamRunningEventCount), "gmio0", "", 0)
	require.NoError(t, err)
	require.NotEqual(t, aie.InvalidProfilingHandle, handle)

	bo := sim.NewBO(256)
	require.NoError(t, SyncBO(device, bo, "gmio0", xrtcore.SyncGMIOToAIE, 256, 0))

	value, err := ReadProfiling(handle)
	require.NoError(t, err)
	assert.EqualValues(t, 64, value)

	require.NoError(t, StopProfiling(handle))

	// The handle left the table with the stop.
	_, err = ReadProfiling(handle)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, Errno(err))
	err = StopProfiling(handle)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, Errno(err))
}

func TestReadProfilingUnknownHandle(t *testing.T) {
	_, err := ReadProfiling(123456)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, Errno(err))
}

func TestSyncBONBThenGMIOWait(t *testing.T) {
	device := sim.NewDevice(0)
	bo := sim.NewBO(64)

	require.NoError(t, SyncBONB(device, bo, "gmio2", xrtcore.SyncAIEToGMIO, 64, 0))
	require.NoError(t, GMIOWait(device, "gmio2"))

	err := SyncBONB(device, bo, "gmio2", xrtcore.SyncAIEToGMIO, 65, 0)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, Errno(err))
}

func TestResetAIEArrayViaShim(t *testing.T) {
	device := sim.NewDevice(0)
	handle, err := StartProfiling(device, int(aie.IOStreamRunningEventCount), "gmio0", "", 0)
	require.NoError(t, err)

	require.NoError(t, ResetAIEArray(device))

	// The array reset released the counter behind the handle.
	_, err = ReadProfiling(handle)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, Errno(err))
}
