package cismap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldRecorder struct {
	fields []uint32
}

func (r *fieldRecorder) WriteField(v uint32) error {
	r.fields = append(r.fields, v)
	return nil
}

func TestMap_AddResourceIsIdempotent(t *testing.T) {
	assert := assert.New(t)

	m := New()
	m.AddResource(5, 10)
	m.AddResource(5, 10)

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(uint32(5), entries[0].SeparateID)
	assert.Equal([]uint32{10}, entries[0].CombinedIDs)
}

func TestMap_CombinedIDsKeepInsertionOrder(t *testing.T) {
	m := New()
	m.AddResource(5, 10)
	m.AddResource(5, 11)

	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, []uint32{10, 11}, entries[0].CombinedIDs)
}

func TestMap_EntriesSortedBySeparateID(t *testing.T) {
	m := New()
	m.AddResource(7, 20)
	m.AddResource(5, 10)
	m.AddResource(6, 15)

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, uint32(5), entries[0].SeparateID)
	assert.Equal(t, uint32(6), entries[1].SeparateID)
	assert.Equal(t, uint32(7), entries[2].SeparateID)
}

func TestMap_SerializeIsCanonical(t *testing.T) {
	build := func(order [][2]uint32) []uint32 {
		m := New()
		for _, pair := range order {
			m.AddResource(pair[0], pair[1])
		}
		rec := &fieldRecorder{}
		require.NoError(t, m.Serialize(rec))
		return rec.fields
	}

	a := build([][2]uint32{{7, 20}, {5, 10}, {5, 11}})
	b := build([][2]uint32{{5, 10}, {7, 20}, {5, 11}, {5, 10}})
	assert.Equal(t, a, b)

	// entry_count, then (separate_id, combined_id_count, ids...) ascending.
	assert.Equal(t, []uint32{2, 5, 2, 10, 11, 7, 1, 20}, a)
}

func TestMap_SerializeEmpty(t *testing.T) {
	rec := &fieldRecorder{}
	require.NoError(t, New().Serialize(rec))
	assert.Equal(t, []uint32{0}, rec.fields)
}
