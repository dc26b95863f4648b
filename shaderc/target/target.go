package target

import "sort"

/** @brief The graphics API family a target generates shaders for. */
type API int

const (
	APIOpenGL API = iota
	APIVulkan
	APIMetal
)

/** @brief Desktop or mobile flavor of a target platform. */
type Platform int

const (
	PlatformDesktop Platform = iota
	PlatformMobile
)

/** @brief Describes one output target. */
type Info struct {
	/** @brief The registry key, e.g. "gl430" or "msl20ios". */
	Name string
	/** @brief The API family. */
	API API
	/** @brief The shading language version. */
	VersionMajor uint32
	VersionMinor uint32
	/** @brief Desktop or mobile. */
	Platform Platform
	/** @brief Extension of generated shader files, without the dot. */
	FileExt string
}

// NeedsCISRemapping reports whether the target lacks separate texture and
// sampler objects, so synthesized combined image samplers must be placed
// into the reserved descriptor set.
func (t Info) NeedsCISRemapping() bool {
	return t.API == APIOpenGL || t.API == APIMetal
}

// IsBytecode reports whether the target's shader files carry raw compiled
// words rather than cross-compiled source text.
func (t Info) IsBytecode() bool {
	return t.API == APIVulkan
}

// CrossConfig is the closed set of cross-compiler configurations, one
// variant per API family. The exhaustive switch in Info.CrossConfig makes
// adding an API without a configuration a compile-time error.
type CrossConfig interface {
	isCrossConfig()
}

/** @brief GLSL output options. */
type GLConfig struct {
	Version               uint32
	ES                    bool
	SeparateShaderObjects bool
}

/** @brief Vulkan targets keep the SPIR-V as-is; only reflection runs. */
type VulkanConfig struct{}

/** @brief MSL output options. */
type MetalConfig struct {
	VersionMajor uint32
	VersionMinor uint32
	IOS          bool
}

func (GLConfig) isCrossConfig()     {}
func (VulkanConfig) isCrossConfig() {}
func (MetalConfig) isCrossConfig()  {}

// CrossConfig produces the cross-compiler configuration for the target.
func (t Info) CrossConfig() CrossConfig {
	switch t.API {
	case APIOpenGL:
		return GLConfig{
			Version:               t.VersionMajor*100 + t.VersionMinor*10,
			ES:                    t.Platform == PlatformMobile,
			SeparateShaderObjects: true,
		}
	case APIVulkan:
		return VulkanConfig{}
	case APIMetal:
		return MetalConfig{
			VersionMajor: t.VersionMajor,
			VersionMinor: t.VersionMinor,
			IOS:          t.Platform == PlatformMobile,
		}
	}
	panic("unreachable")
}

/**
 * @brief An immutable name→target table. Built once and passed by value;
 * no process-wide mutable state.
 */
type Registry struct {
	targets []Info
}

// DefaultRegistry returns the targets the tool knows how to generate.
func DefaultRegistry() Registry {
	return Registry{targets: []Info{
		{Name: "gl430", API: APIOpenGL, VersionMajor: 4, VersionMinor: 3, Platform: PlatformDesktop, FileExt: "430.glsl"},
		{Name: "gles300", API: APIOpenGL, VersionMajor: 3, VersionMinor: 0, Platform: PlatformMobile, FileExt: "300es.glsl"},
		{Name: "gles310", API: APIOpenGL, VersionMajor: 3, VersionMinor: 1, Platform: PlatformMobile, FileExt: "310es.glsl"},
		{Name: "spv", API: APIVulkan, Platform: PlatformDesktop, FileExt: "spv"},
		{Name: "msl10", API: APIMetal, VersionMajor: 1, VersionMinor: 0, Platform: PlatformDesktop, FileExt: "10.msl"},
		{Name: "msl11", API: APIMetal, VersionMajor: 1, VersionMinor: 1, Platform: PlatformDesktop, FileExt: "11.msl"},
		{Name: "msl12", API: APIMetal, VersionMajor: 1, VersionMinor: 2, Platform: PlatformDesktop, FileExt: "12.msl"},
		{Name: "msl20", API: APIMetal, VersionMajor: 2, VersionMinor: 0, Platform: PlatformDesktop, FileExt: "20.msl"},
		{Name: "msl10ios", API: APIMetal, VersionMajor: 1, VersionMinor: 0, Platform: PlatformMobile, FileExt: "10ios.msl"},
		{Name: "msl11ios", API: APIMetal, VersionMajor: 1, VersionMinor: 1, Platform: PlatformMobile, FileExt: "11ios.msl"},
		{Name: "msl12ios", API: APIMetal, VersionMajor: 1, VersionMinor: 2, Platform: PlatformMobile, FileExt: "12ios.msl"},
		{Name: "msl20ios", API: APIMetal, VersionMajor: 2, VersionMinor: 0, Platform: PlatformMobile, FileExt: "20ios.msl"},
	}}
}

// Lookup finds a target by its registry key.
func (r Registry) Lookup(name string) (Info, bool) {
	for _, t := range r.targets {
		if t.Name == name {
			return t, true
		}
	}
	return Info{}, false
}

// Names returns all registry keys, for usage text.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for _, t := range r.targets {
		names = append(names, t.Name)
	}
	return names
}

// SortByAPI orders targets by API family so a run always processes them in
// the same order regardless of how they were specified.
func SortByAPI(targets []Info) {
	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].API < targets[j].API
	})
}
