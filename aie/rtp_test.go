package aie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"golang.org/x/sys/unix"

	"github.com/unsatcore/xrt/sim"
	"github.com/unsatcore/xrt/xrtcore"
)

func TestRTPScalarRoundtrip(t *testing.T) {
	_, g := openTestGraph(t)
	defer g.Close()

	require.NoError(t, g.UpdatePort("gain", float32(1.5)))
	var gain float32
	require.NoError(t, g.ReadPort("gain", &gain))
	assert.Equal(t, float32(1.5), gain)

	require.NoError(t, g.UpdatePort("taps", int32(-41)))
	var taps int32
	require.NoError(t, g.ReadPort("taps", &taps))
	assert.Equal(t, int32(-41), taps)

	require.NoError(t, g.UpdatePort("scale", float16.Fromfloat32(0.25)))
	var scale float16.Float16
	require.NoError(t, g.ReadPort("scale", &scale))
	assert.Equal(t, float32(0.25), scale.Float32())

	require.NoError(t, g.UpdatePort("enable", true))
	var enable bool
	require.NoError(t, g.ReadPort("enable", &enable))
	assert.True(t, enable)
}

func TestRTPEncodingIsLittleEndian(t *testing.T) {
	data, err := encodeRTPValue(uint32(0x0a0b0c0d))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0d, 0x0c, 0x0b, 0x0a}, data)

	var back uint32
	require.NoError(t, decodeRTPValue(data, &back))
	assert.Equal(t, uint32(0x0a0b0c0d), back)
}

func TestRTPRawBytes(t *testing.T) {
	_, g := openTestGraph(t)
	defer g.Close()

	coeffs := []byte{1, 2, 3, 4, 5, 6}
	require.NoError(t, g.UpdateRTP("coeffs", coeffs))
	got, err := g.ReadRTP("coeffs", len(coeffs))
	require.NoError(t, err)
	assert.Equal(t, coeffs, got)

	// Reading with the wrong width is a driver EINVAL.
	_, err = g.ReadRTP("coeffs", 3)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))

	// So is reading a port that was never written.
	_, err = g.ReadRTP("missing", 4)
	require.Error(t, err)
	assert.Equal(t, unix.EINVAL, xrtcore.Code(err))
}

func TestRTPUnsupportedTypes(t *testing.T) {
	_, err := encodeRTPValue(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported RTP value type")

	var out struct{}
	err = decodeRTPValue([]byte{0}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported RTP output type")
}

func TestRTPSharedModeIsReadOnly(t *testing.T) {
	device := sim.NewDevice(0)
	primary, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessPrimary)
	require.NoError(t, err)
	defer primary.Close()
	require.NoError(t, primary.UpdatePort("gain", float32(2)))

	shared, err := OpenGraph(device, testXclbin, "mm2s", xrtcore.GraphAccessShared)
	require.NoError(t, err)
	defer shared.Close()

	// The shared context sees values written by the primary one.
	var gain float32
	require.NoError(t, shared.ReadPort("gain", &gain))
	assert.Equal(t, float32(2), gain)

	err = shared.UpdatePort("gain", float32(3))
	require.Error(t, err)
	assert.Equal(t, unix.EPERM, xrtcore.Code(err))
}
