package layout

import (
	"sort"

	"github.com/spaghettifunk/ashaderc/shaderc/core"
)

/** @brief The type of resource a descriptor binds. Ordinals are part of the
 * .pipeline file format and must not be reordered. */
type DescriptorType uint32

const (
	DescriptorTypeUniformBuffer DescriptorType = iota
	DescriptorTypeStorageBuffer
	DescriptorTypeTexture
	DescriptorTypeSampler
	DescriptorTypeCombinedImageSampler
)

func (t DescriptorType) String() string {
	switch t {
	case DescriptorTypeUniformBuffer:
		return "uniform_buffer"
	case DescriptorTypeStorageBuffer:
		return "storage_buffer"
	case DescriptorTypeTexture:
		return "texture"
	case DescriptorTypeSampler:
		return "sampler"
	case DescriptorTypeCombinedImageSampler:
		return "combined_image_sampler"
	}
	return "unknown"
}

/** @brief Bitmask recording which shader stages reference a descriptor. */
type StageMask uint32

const (
	StageMaskVertex   StageMask = 1 << 0
	StageMaskFragment StageMask = 1 << 1
)

// AutoCISDescriptorSet is the reserved set index that synthesized
// combined-image-sampler descriptors are renumbered into for targets
// without separate sampler and texture binding slots. Hand-authored
// shaders must not bind anything in this set.
const AutoCISDescriptorSet uint32 = 7

/** @brief One shader-visible resource binding slot. */
type Descriptor struct {
	/** @brief The binding number, unique within its set. */
	Binding uint32
	/** @brief The bound resource type. */
	Type DescriptorType
	/** @brief Stages in which the binding is referenced. */
	Stages StageMask
	/** @brief The resource name as reported by reflection. Not serialized;
	 * used by the binding header emitter. */
	Name string
}

/** @brief An ordered-by-binding collection of descriptors. */
type DescriptorSet struct {
	Index       uint32
	Descriptors []Descriptor
}

/**
 * @brief The merged resource layout of one technique: descriptor sets in
 * ascending index order, descriptors in ascending binding order. Immutable
 * once returned by Resolver.Finalize.
 */
type PipelineLayout struct {
	Sets []DescriptorSet
}

// SetCount returns the dense descriptor set count, i.e. the highest
// occupied set index plus one. The serialized layout record is positional,
// so sets below the highest occupied index are present even when empty.
func (l PipelineLayout) SetCount() uint32 {
	if len(l.Sets) == 0 {
		return 0
	}
	return l.Sets[len(l.Sets)-1].Index + 1
}

// Set returns the descriptor set at the given index, or an empty set if
// no descriptor landed there.
func (l PipelineLayout) Set(index uint32) DescriptorSet {
	for _, s := range l.Sets {
		if s.Index == index {
			return s
		}
		if s.Index > index {
			break
		}
	}
	return DescriptorSet{Index: index}
}

// Resource is the copied-out view of one reflected shader resource. Only
// the fields needed to build a descriptor are retained; reflection results
// themselves are borrowed and never outlive the stage being processed.
type Resource struct {
	Name    string
	Set     uint32
	Binding uint32
}

/**
 * @brief Accumulates per-stage reflection data into a single de-duplicated
 * pipeline layout. One resolver per technique.
 */
type Resolver struct {
	sets map[uint32]map[uint32]*Descriptor
}

func NewResolver() *Resolver {
	return &Resolver{
		sets: make(map[uint32]map[uint32]*Descriptor),
	}
}

// AddStageResources merges one resource category of one stage into the
// layout. When renumber is set, combined-image-sampler descriptors ignore
// their declared set and binding and are placed into AutoCISDescriptorSet
// with sequential bindings in report order, so output is reproducible for
// identical input.
func (r *Resolver) AddStageResources(resources []Resource, dtype DescriptorType, stage StageMask, renumber bool) error {
	for i, res := range resources {
		set, binding := res.Set, res.Binding
		if renumber && dtype == DescriptorTypeCombinedImageSampler {
			set = AutoCISDescriptorSet
			binding = uint32(i)
		}

		bindings, ok := r.sets[set]
		if !ok {
			bindings = make(map[uint32]*Descriptor)
			r.sets[set] = bindings
		}

		if existing, ok := bindings[binding]; ok {
			if existing.Type != dtype {
				return &core.LayoutConflictError{
					Set:      set,
					Binding:  binding,
					Existing: existing.Type.String(),
					Incoming: dtype.String(),
				}
			}
			existing.Stages |= stage
			continue
		}
		bindings[binding] = &Descriptor{
			Binding: binding,
			Type:    dtype,
			Stages:  stage,
			Name:    res.Name,
		}
	}
	return nil
}

// Finalize sorts sets by index and descriptors by binding and returns the
// merged layout.
func (r *Resolver) Finalize() PipelineLayout {
	l := PipelineLayout{}
	for idx, bindings := range r.sets {
		ds := DescriptorSet{Index: idx}
		for _, d := range bindings {
			ds.Descriptors = append(ds.Descriptors, *d)
		}
		sort.Slice(ds.Descriptors, func(i, j int) bool {
			return ds.Descriptors[i].Binding < ds.Descriptors[j].Binding
		})
		l.Sets = append(l.Sets, ds)
	}
	sort.Slice(l.Sets, func(i, j int) bool {
		return l.Sets[i].Index < l.Sets[j].Index
	})
	return l
}
