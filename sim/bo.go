package sim

import "github.com/unsatcore/xrt/xrtcore"

// BO is a host-memory buffer object for use with the simulated device.
type BO struct {
	data []byte
}

var _ xrtcore.BO = (*BO)(nil)

// NewBO allocates a buffer object of the given size in bytes.
func NewBO(size uint64) *BO {
	return &BO{data: make([]byte, size)}
}

// Size returns the size of the buffer in bytes.
func (b *BO) Size() uint64 {
	return uint64(len(b.data))
}

// Bytes returns the backing storage of the buffer.
func (b *BO) Bytes() []byte {
	return b.data
}
