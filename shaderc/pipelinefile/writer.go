package pipelinefile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

/** @brief A magic number identifying the file as pipeline metadata. */
const MagicNumber uint32 = 0xdaaaadd2

// HeaderSize is the size in bytes of the fixed header: eight u32 fields.
const HeaderSize uint32 = 32

const (
	VersionMajor uint32 = 1
	VersionMinor uint32 = 0
)

// recordCount is the number of top-level records whose offsets the header
// carries: pipeline layout, image CIS map, sampler CIS map, user metadata.
const recordCount = 4

/**
 * @brief Appends the records of one technique's .pipeline file and
 * back-patches the header with their offsets on Finalize. All integers are
 * little-endian.
 */
type Writer struct {
	ws      io.WriteSeeker
	closer  io.Closer
	offset  uint32
	offsets []uint32
}

// Create opens path for writing and reserves space for the header.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter wraps an output stream positioned at its start. The header
// bytes are reserved immediately; records follow.
func NewWriter(ws io.WriteSeeker) (*Writer, error) {
	w := &Writer{ws: ws}
	if err := w.writeRaw(make([]byte, HeaderSize)); err != nil {
		return nil, err
	}
	return w, nil
}

// StartNewRecord remembers the current byte offset as the start of the
// next top-level record. Records must be started in the fixed order:
// pipeline layout, image CIS map, sampler CIS map, user metadata.
func (w *Writer) StartNewRecord() error {
	if len(w.offsets) == recordCount {
		return fmt.Errorf("pipeline file has exactly %d records, cannot start another", recordCount)
	}
	w.offsets = append(w.offsets, w.offset)
	return nil
}

// WriteField appends one little-endian u32.
func (w *Writer) WriteField(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.writeRaw(buf[:])
}

// WriteRawBytes appends an opaque byte span.
func (w *Writer) WriteRawBytes(b []byte) error {
	return w.writeRaw(b)
}

// WriteCString appends s followed by a NUL terminator. Used for the
// key/value strings of the user metadata record.
func (w *Writer) WriteCString(s string) error {
	if err := w.WriteRawBytes([]byte(s)); err != nil {
		return err
	}
	return w.WriteRawBytes([]byte{0})
}

// Finalize back-patches the header with the magic number, header size,
// format version and the four record offsets, then closes the underlying
// file if the writer owns one.
func (w *Writer) Finalize() error {
	if len(w.offsets) != recordCount {
		return fmt.Errorf("pipeline file has %d records, want %d", len(w.offsets), recordCount)
	}
	if _, err := w.ws.Seek(0, io.SeekStart); err != nil {
		return err
	}
	header := []uint32{
		MagicNumber,
		HeaderSize,
		VersionMajor,
		VersionMinor,
		w.offsets[0],
		w.offsets[1],
		w.offsets[2],
		w.offsets[3],
	}
	buf := make([]byte, HeaderSize)
	for i, v := range header {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	if _, err := w.ws.Write(buf); err != nil {
		return err
	}
	if w.closer != nil {
		c := w.closer
		w.closer = nil
		return c.Close()
	}
	return nil
}

// Close releases the underlying file without finalizing the header. Used
// to abandon a partially written file after a record error; after a
// successful Finalize it is a no-op.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}

func (w *Writer) writeRaw(b []byte) error {
	n, err := w.ws.Write(b)
	w.offset += uint32(n)
	return err
}
