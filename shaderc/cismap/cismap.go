package cismap

import "sort"

// FieldWriter is the sink a map serializes itself into. Satisfied by
// pipelinefile.Writer.
type FieldWriter interface {
	WriteField(v uint32) error
}

/** @brief One separate resource and the combined ids it was fused into. */
type Entry struct {
	SeparateID  uint32
	CombinedIDs []uint32
}

/**
 * @brief Accumulates the separate-to-combined image/sampler correspondence
 * for one resource class (images or samplers) of one technique. A separate
 * id may fuse into several combined ids when it is paired with different
 * counterparts across stages.
 */
type Map struct {
	entries map[uint32][]uint32
}

func New() *Map {
	return &Map{entries: make(map[uint32][]uint32)}
}

// AddResource records that separateID participates in combinedID.
// Re-adding an existing pair is a no-op; first-insertion order of combined
// ids is preserved.
func (m *Map) AddResource(separateID, combinedID uint32) {
	ids := m.entries[separateID]
	for _, id := range ids {
		if id == combinedID {
			return
		}
	}
	m.entries[separateID] = append(ids, combinedID)
}

// Entries returns the map contents in ascending separate-id order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for id, combined := range m.entries {
		out = append(out, Entry{SeparateID: id, CombinedIDs: combined})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SeparateID < out[j].SeparateID
	})
	return out
}

// Serialize writes the map in ascending separate-id order so identical
// logical content always produces identical bytes.
func (m *Map) Serialize(w FieldWriter) error {
	entries := m.Entries()
	if err := w.WriteField(uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteField(e.SeparateID); err != nil {
			return err
		}
		if err := w.WriteField(uint32(len(e.CombinedIDs))); err != nil {
			return err
		}
		for _, id := range e.CombinedIDs {
			if err := w.WriteField(id); err != nil {
				return err
			}
		}
	}
	return nil
}
