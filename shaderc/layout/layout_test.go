package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ashaderc/shaderc/core"
)

func TestResolver_MergesVisibilityAcrossStages(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	res := []Resource{{Name: "globals", Set: 0, Binding: 3}}
	require.NoError(t, r.AddStageResources(res, DescriptorTypeUniformBuffer, StageMaskVertex, false))
	require.NoError(t, r.AddStageResources(res, DescriptorTypeUniformBuffer, StageMaskFragment, false))

	l := r.Finalize()
	require.Len(t, l.Sets, 1)
	require.Len(t, l.Sets[0].Descriptors, 1)
	d := l.Sets[0].Descriptors[0]
	assert.Equal(uint32(3), d.Binding)
	assert.Equal(DescriptorTypeUniformBuffer, d.Type)
	assert.Equal(StageMaskVertex|StageMaskFragment, d.Stages)
}

func TestResolver_TypeConflict(t *testing.T) {
	r := NewResolver()
	res := []Resource{{Name: "buf", Set: 0, Binding: 3}}
	require.NoError(t, r.AddStageResources(res, DescriptorTypeUniformBuffer, StageMaskVertex, false))

	err := r.AddStageResources(res, DescriptorTypeStorageBuffer, StageMaskFragment, false)
	var conflict *core.LayoutConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, uint32(0), conflict.Set)
	assert.Equal(t, uint32(3), conflict.Binding)
	assert.Equal(t, "uniform_buffer", conflict.Existing)
	assert.Equal(t, "storage_buffer", conflict.Incoming)
}

func TestResolver_DeterministicOrdering(t *testing.T) {
	forward := []Resource{
		{Name: "a", Set: 1, Binding: 0},
		{Name: "b", Set: 0, Binding: 2},
		{Name: "c", Set: 0, Binding: 1},
		{Name: "d", Set: 2, Binding: 5},
	}
	backward := []Resource{forward[3], forward[2], forward[1], forward[0]}

	r1 := NewResolver()
	require.NoError(t, r1.AddStageResources(forward, DescriptorTypeUniformBuffer, StageMaskVertex, false))
	r2 := NewResolver()
	require.NoError(t, r2.AddStageResources(backward, DescriptorTypeUniformBuffer, StageMaskVertex, false))

	assert.Equal(t, r1.Finalize(), r2.Finalize())
}

func TestResolver_FinalizeSortsSetsAndBindings(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	res := []Resource{
		{Name: "late", Set: 3, Binding: 7},
		{Name: "mid", Set: 0, Binding: 4},
		{Name: "early", Set: 0, Binding: 1},
	}
	require.NoError(t, r.AddStageResources(res, DescriptorTypeTexture, StageMaskFragment, false))

	l := r.Finalize()
	require.Len(t, l.Sets, 2)
	assert.Equal(uint32(0), l.Sets[0].Index)
	assert.Equal(uint32(3), l.Sets[1].Index)
	assert.Equal(uint32(1), l.Sets[0].Descriptors[0].Binding)
	assert.Equal(uint32(4), l.Sets[0].Descriptors[1].Binding)
}

func TestResolver_CISRenumbering(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	// Declared sets and bindings are deliberately scrambled; renumbering
	// must ignore them.
	res := []Resource{
		{Name: "tex_smp", Set: 4, Binding: 12},
		{Name: "shadow_cmp", Set: 1, Binding: 3},
		{Name: "env_smp", Set: 9, Binding: 0},
	}
	require.NoError(t, r.AddStageResources(res, DescriptorTypeCombinedImageSampler, StageMaskFragment, true))

	l := r.Finalize()
	require.Len(t, l.Sets, 1)
	set := l.Sets[0]
	assert.Equal(AutoCISDescriptorSet, set.Index)
	require.Len(t, set.Descriptors, 3)
	for i, d := range set.Descriptors {
		assert.Equal(uint32(i), d.Binding)
		assert.Equal(DescriptorTypeCombinedImageSampler, d.Type)
	}
	assert.Equal("tex_smp", set.Descriptors[0].Name)
	assert.Equal("shadow_cmp", set.Descriptors[1].Name)
	assert.Equal("env_smp", set.Descriptors[2].Name)
}

func TestPipelineLayout_DenseSetAccess(t *testing.T) {
	assert := assert.New(t)

	r := NewResolver()
	res := []Resource{
		{Name: "a", Set: 0, Binding: 0},
		{Name: "b", Set: 2, Binding: 1},
	}
	require.NoError(t, r.AddStageResources(res, DescriptorTypeUniformBuffer, StageMaskVertex, false))

	l := r.Finalize()
	assert.Equal(uint32(3), l.SetCount())
	assert.Len(l.Set(0).Descriptors, 1)
	assert.Empty(l.Set(1).Descriptors)
	assert.Len(l.Set(2).Descriptors, 1)

	empty := PipelineLayout{}
	assert.Equal(uint32(0), empty.SetCount())
}
