package base

import (
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"io"
	"net"
)

const (
	// lengthPrefixSize is the size of the frame header
	lengthPrefixSize = 4
	// maxFrameSize bounds the payload a peer may announce
	maxFrameSize = 256 * 1024 * 1024
)

// writeFrame writes a frame to the writer with the format:
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(w io.Writer, data []byte) error {
	if len(data) > maxFrameSize {
		return fmt.Errorf("%w: frame of %d bytes exceeds the limit of %d bytes", common.ErrFraming, len(data), maxFrameSize)
	}

	header := make([]byte, lengthPrefixSize)
	binary.BigEndian.PutUint32(header, uint32(len(data)))

	// net.Buffers lets a net.Conn write header and payload with a single syscall
	b := net.Buffers{header, data}
	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to write frame: %w", common.ErrTransport, err)
	}
	return nil
}

// readFrame reads exactly one frame from the reader and returns its payload.
// A stream that ends before the prefix or the announced payload is complete
// results in an ErrFraming error, other read failures (e.g. timeouts) in ErrTransport.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, lengthPrefixSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, wrapReadError("length prefix", err)
	}

	contentLength := binary.BigEndian.Uint32(header)
	if contentLength > maxFrameSize {
		return nil, fmt.Errorf("%w: announced frame of %d bytes exceeds the limit of %d bytes", common.ErrFraming, contentLength, maxFrameSize)
	}

	// If no data, return empty slice
	if contentLength == 0 {
		return []byte{}, nil
	}

	// io.ReadFull retries partial reads until the payload is complete
	data := make([]byte, contentLength)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, wrapReadError("payload", err)
	}

	return data, nil
}

// wrapReadError classifies an error returned by io.ReadFull
func wrapReadError(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: stream ended before the %s was read completely: %w", common.ErrFraming, part, err)
	}
	return fmt.Errorf("%w: failed to read %s: %w", common.ErrTransport, part, err)
}
