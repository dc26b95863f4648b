package compiler

import (
	"github.com/spaghettifunk/ashaderc/shaderc/target"
	"github.com/spaghettifunk/ashaderc/shaderc/technique"
)

/** @brief One reflected shader resource. Copied out of the collaborator's
 * reflection output; never retained past the stage being processed. */
type ResourceInfo struct {
	/** @brief The collaborator's resource id, used by the CIS remap list. */
	ID uint32
	/** @brief The resource name as declared in the shader. */
	Name string
	/** @brief Declared descriptor set. */
	Set uint32
	/** @brief Declared binding. */
	Binding uint32
}

/** @brief Resource lists by semantic role, as reflection reports them. */
type ShaderResources struct {
	UniformBuffers   []ResourceInfo
	StorageBuffers   []ResourceInfo
	SeparateImages   []ResourceInfo
	SeparateSamplers []ResourceInfo
}

/** @brief One entry of the combined-image-sampler remap list: a separate
 * image and sampler fused into a synthesized combined object. */
type CombinedImageSampler struct {
	ImageID    uint32
	SamplerID  uint32
	CombinedID uint32
	/** @brief Synthesized name, <image>_<sampler>. */
	Name string
}

/** @brief Everything the cross-compile/reflect step yields for one stage
 * of one technique on one target. */
type CrossResult struct {
	/** @brief Cross-compiled source text; nil for bytecode targets. */
	Source []byte
	/** @brief Reflected resource lists. */
	Resources ShaderResources
	/** @brief Remap list; empty unless the target fuses image/sampler pairs. */
	CombinedImageSamplers []CombinedImageSampler
}

/** @brief Options for one compilation. */
type CompileOptions struct {
	/** @brief Shader stage to compile. */
	Stage technique.StageKind
	/** @brief Entry point function name. */
	EntryPoint string
	/** @brief Preprocessor defines. */
	Defines map[string]string
	/** @brief Define names in a deterministic order. */
	DefineKeys []string
	/** @brief Source file name, for diagnostics. */
	SourceName string
}

// Compiler turns annotated HLSL into SPIR-V. Implemented by the external
// glslc adapter; faked in tests.
type Compiler interface {
	Compile(source []byte, opts CompileOptions) ([]byte, error)
}

// CrossCompiler reflects SPIR-V and, for non-bytecode targets, produces
// target-language source. Implemented by the external spirv-cross adapter;
// faked in tests.
type CrossCompiler interface {
	Cross(spirv []byte, t target.Info) (*CrossResult, error)
}
