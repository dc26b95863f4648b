package pipelinefile

import (
	"bytes"
	"encoding/binary"

	"github.com/spaghettifunk/ashaderc/shaderc/cismap"
	"github.com/spaghettifunk/ashaderc/shaderc/core"
	"github.com/spaghettifunk/ashaderc/shaderc/layout"
)

/** @brief The fixed .pipeline file header. All offsets are byte offsets
 * from the start of the file. */
type Header struct {
	MagicNumber           uint32
	HeaderSize            uint32
	VersionMajor          uint32
	VersionMinor          uint32
	PipelineLayoutOffset  uint32
	ImageToCISMapOffset   uint32
	SamplerToCISMapOffset uint32
	UserMetadataOffset    uint32
}

/** @brief One key/value pair of the user metadata record. */
type MetaPair struct {
	Key   string
	Value string
}

/**
 * @brief Decoded pipeline metadata. Produced by Load; read-only.
 */
type Metadata struct {
	header     Header
	layout     layout.PipelineLayout
	imageMap   []cismap.Entry
	samplerMap []cismap.Entry
	userMeta   []MetaPair
}

func (m *Metadata) Header() Header                  { return m.header }
func (m *Metadata) Layout() layout.PipelineLayout   { return m.layout }
func (m *Metadata) ImageToCISMap() []cismap.Entry   { return m.imageMap }
func (m *Metadata) SamplerToCISMap() []cismap.Entry { return m.samplerMap }
func (m *Metadata) UserMetadata() []MetaPair        { return m.userMeta }

// Load validates and decodes a .pipeline buffer. Any structural violation
// is returned as a FormatError; nothing is partially decoded. Records are
// located through the header offsets, never positionally, so readers stay
// compatible with files that append new records.
func Load(buf []byte) (*Metadata, error) {
	if uint32(len(buf)) < HeaderSize {
		return nil, &core.FormatError{Cause: core.ErrSize, Offset: 0}
	}
	var h Header
	fields := []*uint32{
		&h.MagicNumber, &h.HeaderSize, &h.VersionMajor, &h.VersionMinor,
		&h.PipelineLayoutOffset, &h.ImageToCISMapOffset,
		&h.SamplerToCISMapOffset, &h.UserMetadataOffset,
	}
	for i, f := range fields {
		*f = binary.LittleEndian.Uint32(buf[i*4:])
	}
	if h.MagicNumber != MagicNumber {
		return nil, &core.FormatError{Cause: core.ErrMagic, Offset: 0}
	}

	m := &Metadata{header: h}
	var err error
	if m.layout, err = readLayout(buf, h.PipelineLayoutOffset); err != nil {
		return nil, err
	}
	if m.imageMap, err = readCISMap(buf, h.ImageToCISMapOffset); err != nil {
		return nil, err
	}
	if m.samplerMap, err = readCISMap(buf, h.SamplerToCISMapOffset); err != nil {
		return nil, err
	}
	if m.userMeta, err = readUserMetadata(buf, h.UserMetadataOffset); err != nil {
		return nil, err
	}
	return m, nil
}

// cursor is a bounds-checked reader over the metadata buffer.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) u32() (uint32, error) {
	if c.off+4 > len(c.buf) {
		return 0, &core.FormatError{Cause: core.ErrSize, Offset: c.off}
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// remaining checks that the buffer still holds at least need bytes, so
// element counts read from untrusted data are validated before they size
// any allocation.
func (c *cursor) remaining(need uint64) error {
	if uint64(len(c.buf)-c.off) < need {
		return &core.FormatError{Cause: core.ErrSize, Offset: c.off}
	}
	return nil
}

func (c *cursor) cstring() (string, error) {
	end := bytes.IndexByte(c.buf[c.off:], 0)
	if end < 0 {
		return "", &core.FormatError{Cause: core.ErrSize, Offset: c.off}
	}
	s := string(c.buf[c.off : c.off+end])
	c.off += end + 1
	return s, nil
}

func newCursor(buf []byte, off uint32) (*cursor, error) {
	if uint32(len(buf)) < off {
		return nil, &core.FormatError{Cause: core.ErrSize, Offset: int(off)}
	}
	return &cursor{buf: buf, off: int(off)}, nil
}

// readLayout decodes the positional set list. Sets with no descriptors are
// not materialized, matching what the layout resolver produces.
func readLayout(buf []byte, off uint32) (layout.PipelineLayout, error) {
	l := layout.PipelineLayout{}
	c, err := newCursor(buf, off)
	if err != nil {
		return l, err
	}
	setCount, err := c.u32()
	if err != nil {
		return l, err
	}
	// Each set carries at least its descriptor count.
	if err := c.remaining(uint64(setCount) * 4); err != nil {
		return l, err
	}
	for set := uint32(0); set < setCount; set++ {
		descCount, err := c.u32()
		if err != nil {
			return layout.PipelineLayout{}, err
		}
		// Three u32 fields per descriptor.
		if err := c.remaining(uint64(descCount) * 12); err != nil {
			return layout.PipelineLayout{}, err
		}
		if descCount == 0 {
			continue
		}
		ds := layout.DescriptorSet{Index: set}
		for i := uint32(0); i < descCount; i++ {
			var d layout.Descriptor
			if d.Binding, err = c.u32(); err != nil {
				return layout.PipelineLayout{}, err
			}
			t, err := c.u32()
			if err != nil {
				return layout.PipelineLayout{}, err
			}
			d.Type = layout.DescriptorType(t)
			mask, err := c.u32()
			if err != nil {
				return layout.PipelineLayout{}, err
			}
			d.Stages = layout.StageMask(mask)
			ds.Descriptors = append(ds.Descriptors, d)
		}
		l.Sets = append(l.Sets, ds)
	}
	return l, nil
}

func readCISMap(buf []byte, off uint32) ([]cismap.Entry, error) {
	c, err := newCursor(buf, off)
	if err != nil {
		return nil, err
	}
	entryCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	// Each entry carries at least a separate id and a combined count.
	if err := c.remaining(uint64(entryCount) * 8); err != nil {
		return nil, err
	}
	entries := make([]cismap.Entry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		var e cismap.Entry
		if e.SeparateID, err = c.u32(); err != nil {
			return nil, err
		}
		combinedCount, err := c.u32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < combinedCount; j++ {
			id, err := c.u32()
			if err != nil {
				return nil, err
			}
			e.CombinedIDs = append(e.CombinedIDs, id)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readUserMetadata(buf []byte, off uint32) ([]MetaPair, error) {
	c, err := newCursor(buf, off)
	if err != nil {
		return nil, err
	}
	pairCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	// Each pair holds two strings, each at least a terminating NUL.
	if err := c.remaining(uint64(pairCount) * 2); err != nil {
		return nil, err
	}
	pairs := make([]MetaPair, 0, pairCount)
	for i := uint32(0); i < pairCount; i++ {
		key, err := c.cstring()
		if err != nil {
			return nil, err
		}
		value, err := c.cstring()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, MetaPair{Key: key, Value: value})
	}
	return pairs, nil
}
