package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/ashaderc/shaderc/cismap"
	"github.com/spaghettifunk/ashaderc/shaderc/compiler"
	"github.com/spaghettifunk/ashaderc/shaderc/core"
	"github.com/spaghettifunk/ashaderc/shaderc/headerwriter"
	"github.com/spaghettifunk/ashaderc/shaderc/layout"
	"github.com/spaghettifunk/ashaderc/shaderc/pipelinefile"
	"github.com/spaghettifunk/ashaderc/shaderc/target"
	"github.com/spaghettifunk/ashaderc/shaderc/technique"
)

/**
 * @brief Runs the whole batch: parse techniques, compile every entry point,
 * cross-compile per target, accumulate layouts and CIS maps, emit shader
 * binaries, .pipeline metadata and the optional binding header.
 *
 * Single-threaded by design; the first fatal error aborts the run.
 */
type Builder struct {
	Compiler        compiler.Compiler
	Cross           compiler.CrossCompiler
	Registry        target.Registry
	OutputDir       string
	HeaderPath      string
	HeaderNamespace string
}

// Run processes one annotated source file for the given targets.
func (b *Builder) Run(inputPath string, targetNames []string) error {
	if len(targetNames) == 0 {
		return fmt.Errorf("no target shader flavors specified, use -t to specify a target")
	}
	targets := make([]target.Info, 0, len(targetNames))
	for _, name := range targetNames {
		t, ok := b.Registry.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown target %q, valid targets: %v", name, b.Registry.Names())
		}
		targets = append(targets, t)
	}
	// Targets are always processed in the same order, no matter what order
	// they were specified in.
	target.SortByAPI(targets)

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("unable to read input file: %w", err)
	}
	source = append(source, '\n')

	techniques, err := technique.Parse(inputPath, source)
	if err != nil {
		return err
	}
	if len(techniques) == 0 {
		return fmt.Errorf("input file %s does not define any techniques, define techniques with a //T: comment", inputPath)
	}
	core.LogInfo("found %d technique(s) in %s", len(techniques), inputPath)

	// Compile every entry point up front, once, in technique order. The
	// per-target loop below indexes this list linearly.
	var spvResults [][]byte
	for _, tech := range techniques {
		for _, ep := range tech.EntryPoints {
			core.LogDebug("compiling technique %q entry point %q", tech.Name, ep.Name)
			spv, err := b.Compiler.Compile(source, compiler.CompileOptions{
				Stage:      ep.Kind,
				EntryPoint: ep.Name,
				Defines:    tech.Defines,
				DefineKeys: tech.DefineKeys,
				SourceName: inputPath,
			})
			if err != nil {
				return &core.CompilationError{
					Technique:  tech.Name,
					EntryPoint: ep.Name,
					Diagnostic: err.Error(),
				}
			}
			spvResults = append(spvResults, spv)
		}
	}

	hw, err := headerwriter.New(b.OutputDir, b.HeaderPath, b.HeaderNamespace)
	if err != nil {
		return fmt.Errorf("unable to open header file: %w", err)
	}

	// Metadata and the binding header describe the technique, not the
	// target; both are emitted while processing the first target only.
	generateMetadata := true
	for _, t := range targets {
		core.LogInfo("generating shaders for target %s", t.Name)
		spvIdx := 0
		for _, tech := range techniques {
			resolver := layout.NewResolver()
			imagesToCIS := cismap.New()
			samplersToCIS := cismap.New()
			for _, ep := range tech.EntryPoints {
				spv := spvResults[spvIdx]
				spvIdx++
				cross, err := b.Cross.Cross(spv, t)
				if err != nil {
					return &core.CompilationError{
						Technique:  tech.Name,
						EntryPoint: ep.Name,
						Diagnostic: err.Error(),
					}
				}
				doRemap := t.NeedsCISRemapping()
				if doRemap || generateMetadata {
					if err := accumulateStage(resolver, imagesToCIS, samplersToCIS, cross, ep.Kind, doRemap); err != nil {
						return err
					}
				}
				outPath := filepath.Join(b.OutputDir, fmt.Sprintf("%s.%s.%s", tech.Name, stageSuffix(ep.Kind), t.FileExt))
				payload := cross.Source
				if t.IsBytecode() {
					payload = spv
				}
				if err := os.WriteFile(outPath, payload, 0o644); err != nil {
					return fmt.Errorf("unable to write output file: %w", err)
				}
				core.LogDebug("wrote %s", outPath)
			}
			if generateMetadata {
				if err := b.writeMetadata(tech, resolver.Finalize(), imagesToCIS, samplersToCIS, hw); err != nil {
					return err
				}
			}
		}
		generateMetadata = false
	}
	return hw.Finalize()
}

// accumulateStage merges one stage's reflection into the technique's
// layout resolver and CIS map builders.
func accumulateStage(resolver *layout.Resolver, imagesToCIS, samplersToCIS *cismap.Map, cross *compiler.CrossResult, kind technique.StageKind, doRemap bool) error {
	for _, cis := range cross.CombinedImageSamplers {
		imagesToCIS.AddResource(cis.ImageID, cis.CombinedID)
		samplersToCIS.AddResource(cis.SamplerID, cis.CombinedID)
	}

	stageBit := layout.StageMaskVertex
	if kind == technique.StageFragment {
		stageBit = layout.StageMaskFragment
	}

	add := func(resources []compiler.ResourceInfo, dtype layout.DescriptorType, renumber bool) error {
		return resolver.AddStageResources(toLayoutResources(resources), dtype, stageBit, renumber)
	}
	if err := add(cross.Resources.UniformBuffers, layout.DescriptorTypeUniformBuffer, false); err != nil {
		return err
	}
	if err := add(cross.Resources.StorageBuffers, layout.DescriptorTypeStorageBuffer, false); err != nil {
		return err
	}
	if err := add(cross.Resources.SeparateSamplers, layout.DescriptorTypeSampler, false); err != nil {
		return err
	}
	if err := add(cross.Resources.SeparateImages, layout.DescriptorTypeTexture, false); err != nil {
		return err
	}
	if doRemap {
		combined := make([]compiler.ResourceInfo, 0, len(cross.CombinedImageSamplers))
		for _, cis := range cross.CombinedImageSamplers {
			combined = append(combined, compiler.ResourceInfo{ID: cis.CombinedID, Name: cis.Name})
		}
		if err := add(combined, layout.DescriptorTypeCombinedImageSampler, true); err != nil {
			return err
		}
	}
	return nil
}

// writeMetadata emits the .pipeline file of one technique, walking the
// layout once for both the metadata writer and the header emitter.
func (b *Builder) writeMetadata(tech technique.Technique, l layout.PipelineLayout, imagesToCIS, samplersToCIS *cismap.Map, hw *headerwriter.Writer) error {
	path := filepath.Join(b.OutputDir, tech.Name+".pipeline")
	w, err := pipelinefile.Create(path)
	if err != nil {
		return fmt.Errorf("unable to open output file: %w", err)
	}
	// Finalize closes the file on success; this releases it when any
	// record write below fails.
	defer w.Close()

	hw.BeginTechnique(tech.Name)
	if err := w.StartNewRecord(); err != nil {
		return err
	}
	if err := w.WriteField(l.SetCount()); err != nil {
		return err
	}
	for set := uint32(0); set < l.SetCount(); set++ {
		ds := l.Set(set)
		if err := w.WriteField(uint32(len(ds.Descriptors))); err != nil {
			return err
		}
		for _, d := range ds.Descriptors {
			for _, field := range []uint32{d.Binding, uint32(d.Type), uint32(d.Stages)} {
				if err := w.WriteField(field); err != nil {
					return err
				}
			}
			hw.WriteDescriptor(d, set)
		}
	}
	hw.EndTechnique()

	if err := w.StartNewRecord(); err != nil {
		return err
	}
	if err := imagesToCIS.Serialize(w); err != nil {
		return err
	}
	if err := w.StartNewRecord(); err != nil {
		return err
	}
	if err := samplersToCIS.Serialize(w); err != nil {
		return err
	}

	if err := w.StartNewRecord(); err != nil {
		return err
	}
	if err := w.WriteField(uint32(len(tech.MetadataKeys))); err != nil {
		return err
	}
	for _, key := range tech.MetadataKeys {
		if err := w.WriteCString(key); err != nil {
			return err
		}
		if err := w.WriteCString(tech.Metadata[key]); err != nil {
			return err
		}
	}
	if err := w.Finalize(); err != nil {
		return err
	}
	core.LogInfo("wrote pipeline metadata %s", path)
	return nil
}

func toLayoutResources(in []compiler.ResourceInfo) []layout.Resource {
	out := make([]layout.Resource, 0, len(in))
	for _, r := range in {
		out = append(out, layout.Resource{Name: r.Name, Set: r.Set, Binding: r.Binding})
	}
	return out
}

func stageSuffix(kind technique.StageKind) string {
	if kind == technique.StageVertex {
		return "vs"
	}
	return "ps"
}
