package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/spaghettifunk/ashaderc/shaderc/target"
)

// SpirvCross reflects and cross-compiles SPIR-V by shelling out to the
// spirv-cross binary: one --reflect pass for the resource lists, one
// target pass for the output text.
type SpirvCross struct {
	Bin string
}

func NewSpirvCross() *SpirvCross { return &SpirvCross{Bin: "spirv-cross"} }

type reflectedResource struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Set     uint32 `json:"set"`
	Binding uint32 `json:"binding"`
}

type reflection struct {
	UBOs             []reflectedResource `json:"ubos"`
	SSBOs            []reflectedResource `json:"ssbos"`
	SeparateImages   []reflectedResource `json:"separate_images"`
	SeparateSamplers []reflectedResource `json:"separate_samplers"`
}

func (s *SpirvCross) Cross(spirv []byte, t target.Info) (*CrossResult, error) {
	tmp, err := os.CreateTemp("", "ashaderc-*.spv")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(spirv); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	reflectOut, err := s.run(tmp.Name(), "--reflect")
	if err != nil {
		return nil, err
	}
	var refl reflection
	if err := json.Unmarshal(reflectOut, &refl); err != nil {
		return nil, fmt.Errorf("unable to decode reflection output: %w", err)
	}

	res := &CrossResult{
		Resources: ShaderResources{
			UniformBuffers:   toResourceInfo(refl.UBOs),
			StorageBuffers:   toResourceInfo(refl.SSBOs),
			SeparateImages:   toResourceInfo(refl.SeparateImages),
			SeparateSamplers: toResourceInfo(refl.SeparateSamplers),
		},
	}
	if t.NeedsCISRemapping() {
		res.CombinedImageSamplers = synthesizeCombined(refl)
	}

	args, needsPass := targetArgs(t)
	if !needsPass {
		// Bytecode target: the SPIR-V itself is the artifact.
		return res, nil
	}
	out, err := s.run(tmp.Name(), args...)
	if err != nil {
		return nil, err
	}
	res.Source = out
	return res, nil
}

// targetArgs maps a target's cross-compile config onto spirv-cross flags.
// The second return is false when the target needs no cross-compile pass.
func targetArgs(t target.Info) ([]string, bool) {
	switch cfg := t.CrossConfig().(type) {
	case target.GLConfig:
		args := []string{"--version", strconv.FormatUint(uint64(cfg.Version), 10)}
		if cfg.ES {
			args = append(args, "--es")
		}
		if cfg.SeparateShaderObjects {
			args = append(args, "--separate-shader-objects")
		}
		return args, true
	case target.MetalConfig:
		args := []string{"--msl", "--msl-version",
			strconv.FormatUint(uint64(cfg.VersionMajor*10000+cfg.VersionMinor*100), 10)}
		if cfg.IOS {
			args = append(args, "--msl-ios")
		}
		return args, true
	default:
		return nil, false
	}
}

func (s *SpirvCross) run(path string, args ...string) ([]byte, error) {
	cmd := exec.Command(s.Bin, append([]string{path}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s", stderr.String())
		}
		return nil, fmt.Errorf("failed to run %v: %w", cmd.Args, err)
	}
	return stdout.Bytes(), nil
}

func toResourceInfo(in []reflectedResource) []ResourceInfo {
	out := make([]ResourceInfo, 0, len(in))
	for _, r := range in {
		out = append(out, ResourceInfo{ID: r.ID, Name: r.Name, Set: r.Set, Binding: r.Binding})
	}
	return out
}

// synthesizeCombined builds the remap list by pairing every separate image
// with every separate sampler in declaration order. The CLI reflection does
// not say which sampler actually samples which image, so the pairing is the
// conservative superset; combined ids are allocated past the highest id
// reflection reported.
func synthesizeCombined(refl reflection) []CombinedImageSampler {
	nextID := uint32(0)
	for _, r := range refl.SeparateImages {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}
	for _, r := range refl.SeparateSamplers {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}
	var combined []CombinedImageSampler
	for _, img := range refl.SeparateImages {
		for _, samp := range refl.SeparateSamplers {
			combined = append(combined, CombinedImageSampler{
				ImageID:    img.ID,
				SamplerID:  samp.ID,
				CombinedID: nextID,
				Name:       img.Name + "_" + samp.Name,
			})
			nextID++
		}
	}
	return combined
}
