package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor stores values as they are.
type NoCompressor struct{}

func (NoCompressor) Name() string {
	return "none"
}

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Block modes following the length header.
const (
	modeStored byte = 0
	modeLZ4    byte = 1
)

// maxDecodedSize bounds the length header so corrupt input cannot trigger
// huge allocations.
const maxDecodedSize = 64 << 20

// LZ4Compressor frames an LZ4 block as
//
//	uvarint(len(data)) | mode | payload
//
// Data that lz4 cannot shrink is stored with modeStored.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string {
	return "lz4"
}

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := binary.AppendUvarint(nil, uint64(len(data)))

	if len(data) > 0 {
		compressed := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		if n > 0 && n < len(data) {
			out := append(header, modeLZ4)
			return append(out, compressed[:n]...), nil
		}
	}

	out := append(header, modeStored)
	return append(out, data...), nil
}

func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	size, n := binary.Uvarint(data)
	if n <= 0 || len(data) < n+1 {
		return nil, fmt.Errorf("%w: bad length header", ErrCorrupt)
	}
	if size > maxDecodedSize {
		return nil, fmt.Errorf("%w: length %d too large", ErrCorrupt, size)
	}

	mode, payload := data[n], data[n+1:]
	switch mode {
	case modeStored:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: stored %d bytes, header says %d", ErrCorrupt, len(payload), size)
		}
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil

	case modeLZ4:
		out := make([]byte, size)
		m, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(m) != size {
			return nil, fmt.Errorf("%w: decoded %d bytes, header says %d", ErrCorrupt, m, size)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrCorrupt, mode)
	}
}
