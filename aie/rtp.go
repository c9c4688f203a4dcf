package aie

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// RTP ports carry fixed-width scalars encoded little-endian, the byte
// order of the AIE shim. UpdatePort and ReadPort do the encoding so
// callers don't hand-roll byte slices for the common scalar cases;
// UpdateRTP/ReadRTP remain available for aggregate parameters.

// encodeRTPValue returns the little-endian wire bytes for a scalar RTP
// value. []byte values pass through unmodified.
func encodeRTPValue(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case bool:
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case int8:
		return []byte{byte(v)}, nil
	case uint8:
		return []byte{v}, nil
	case int16:
		return binary.LittleEndian.AppendUint16(nil, uint16(v)), nil
	case uint16:
		return binary.LittleEndian.AppendUint16(nil, v), nil
	case int32:
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil
	case uint32:
		return binary.LittleEndian.AppendUint32(nil, v), nil
	case int64:
		return binary.LittleEndian.AppendUint64(nil, uint64(v)), nil
	case uint64:
		return binary.LittleEndian.AppendUint64(nil, v), nil
	case int:
		return binary.LittleEndian.AppendUint32(nil, uint32(v)), nil
	case float16.Float16:
		return binary.LittleEndian.AppendUint16(nil, v.Bits()), nil
	case float32:
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)), nil
	case float64:
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)), nil
	}
	return nil, errors.Errorf("unsupported RTP value type %T", value)
}

// decodeRTPValue decodes little-endian wire bytes into *out, which must
// point at one of the scalar types encodeRTPValue accepts (or at a []byte
// to take the raw bytes).
func decodeRTPValue(data []byte, out any) error {
	need := func(n int) error {
		if len(data) != n {
			return errors.Errorf("RTP value has %d bytes, want %d for %T", len(data), n, out)
		}
		return nil
	}
	switch p := out.(type) {
	case *[]byte:
		*p = data
		return nil
	case *bool:
		if err := need(1); err != nil {
			return err
		}
		*p = data[0] != 0
		return nil
	case *int8:
		if err := need(1); err != nil {
			return err
		}
		*p = int8(data[0])
		return nil
	case *uint8:
		if err := need(1); err != nil {
			return err
		}
		*p = data[0]
		return nil
	case *int16:
		if err := need(2); err != nil {
			return err
		}
		*p = int16(binary.LittleEndian.Uint16(data))
		return nil
	case *uint16:
		if err := need(2); err != nil {
			return err
		}
		*p = binary.LittleEndian.Uint16(data)
		return nil
	case *int32:
		if err := need(4); err != nil {
			return err
		}
		*p = int32(binary.LittleEndian.Uint32(data))
		return nil
	case *uint32:
		if err := need(4); err != nil {
			return err
		}
		*p = binary.LittleEndian.Uint32(data)
		return nil
	case *int64:
		if err := need(8); err != nil {
			return err
		}
		*p = int64(binary.LittleEndian.Uint64(data))
		return nil
	case *int:
		if err := need(4); err != nil {
			return err
		}
		*p = int(int32(binary.LittleEndian.Uint32(data)))
		return nil
	case *uint64:
		if err := need(8); err != nil {
			return err
		}
		*p = binary.LittleEndian.Uint64(data)
		return nil
	case *float16.Float16:
		if err := need(2); err != nil {
			return err
		}
		*p = float16.Frombits(binary.LittleEndian.Uint16(data))
		return nil
	case *float32:
		if err := need(4); err != nil {
			return err
		}
		*p = math.Float32frombits(binary.LittleEndian.Uint32(data))
		return nil
	case *float64:
		if err := need(8); err != nil {
			return err
		}
		*p = math.Float64frombits(binary.LittleEndian.Uint64(data))
		return nil
	}
	return errors.Errorf("unsupported RTP output type %T", out)
}

// UpdatePort writes a typed scalar value to the named run-time-parameter
// port. Supported types are bool, the fixed-width ints, int (written as
// 32 bits), float16.Float16, float32, float64 and raw []byte.
func (g *Graph) UpdatePort(port string, value any) error {
	data, err := encodeRTPValue(value)
	if err != nil {
		return errors.WithMessagef(err, "updating RTP port %q of graph %q", port, g.name)
	}
	return g.UpdateRTP(port, data)
}

// ReadPort reads a typed scalar from the named run-time-parameter port
// into *out. The port must hold exactly the width of the requested type.
func (g *Graph) ReadPort(port string, out any) error {
	size, err := rtpValueSize(out)
	if err != nil {
		return errors.WithMessagef(err, "reading RTP port %q of graph %q", port, g.name)
	}
	data, err := g.ReadRTP(port, size)
	if err != nil {
		return err
	}
	return errors.WithMessagef(decodeRTPValue(data, out), "reading RTP port %q of graph %q", port, g.name)
}

// rtpValueSize returns the wire size in bytes for the type *out points at.
func rtpValueSize(out any) (int, error) {
	switch out.(type) {
	case *bool, *int8, *uint8:
		return 1, nil
	case *int16, *uint16, *float16.Float16:
		return 2, nil
	case *int32, *uint32, *int, *float32:
		return 4, nil
	case *int64, *uint64, *float64:
		return 8, nil
	}
	return 0, errors.Errorf("unsupported RTP output type %T", out)
}
