package embcache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kailas-cloud/coursefind/internal/domain"
)

// Payload layout (little endian):
//
//	magic "CFEM" | version u16 | fingerprint len u16 | fingerprint | rows u32 | dims u32 | rows*dims f32
const (
	payloadMagic   = "CFEM"
	payloadVersion = uint16(1)
	headerFixedLen = 4 + 2 + 2 + 4 + 4
)

var errCorrupt = errors.New("corrupt payload")

// encodeMatrix serializes m together with the fingerprint it was computed for.
// Float bits are copied verbatim so a decode is bit-identical.
func encodeMatrix(fingerprint string, m domain.Matrix) ([]byte, error) {
	if len(fingerprint) > math.MaxUint16 {
		return nil, fmt.Errorf("fingerprint too long: %d", len(fingerprint))
	}
	rows, dims := m.Rows(), m.Dims()
	for i, row := range m {
		if len(row) != dims {
			return nil, fmt.Errorf("ragged matrix: row %d has %d dims, want %d", i, len(row), dims)
		}
	}

	buf := make([]byte, 0, headerFixedLen+len(fingerprint)+rows*dims*4)
	buf = append(buf, payloadMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, payloadVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(fingerprint)))
	buf = append(buf, fingerprint...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rows))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dims))
	for _, row := range m {
		for _, f := range row {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf, nil
}

// decodeMatrix parses a payload produced by encodeMatrix.
func decodeMatrix(data []byte) (string, domain.Matrix, error) {
	if len(data) < headerFixedLen || string(data[:4]) != payloadMagic {
		return "", nil, fmt.Errorf("%w: bad header", errCorrupt)
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != payloadVersion {
		return "", nil, fmt.Errorf("%w: unsupported version %d", errCorrupt, v)
	}
	fpLen := int(binary.LittleEndian.Uint16(data[6:]))
	off := 8
	if len(data) < off+fpLen+8 {
		return "", nil, fmt.Errorf("%w: truncated header", errCorrupt)
	}
	fingerprint := string(data[off : off+fpLen])
	off += fpLen

	rows := int(binary.LittleEndian.Uint32(data[off:]))
	dims := int(binary.LittleEndian.Uint32(data[off+4:]))
	off += 8
	if rows > 0 && dims == 0 {
		return "", nil, fmt.Errorf("%w: %d rows of zero width", errCorrupt, rows)
	}

	body := data[off:]
	if uint64(len(body)) != uint64(rows)*uint64(dims)*4 {
		return "", nil, fmt.Errorf("%w: body is %d bytes, want %dx%d floats", errCorrupt, len(body), rows, dims)
	}

	m := make(domain.Matrix, rows)
	for i := range m {
		row := make([]float32, dims)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[(i*dims+j)*4:]))
		}
		m[i] = row
	}
	return fingerprint, m, nil
}
