package compiler

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/spaghettifunk/ashaderc/shaderc/technique"
)

// Glslc compiles HLSL to SPIR-V by shelling out to the glslc binary.
type Glslc struct {
	Bin string
}

func NewGlslc() *Glslc { return &Glslc{Bin: "glslc"} }

func (g *Glslc) Compile(source []byte, opts CompileOptions) ([]byte, error) {
	cmd := exec.Command(g.Bin, buildArgs(opts)...)
	cmd.Stdin = bytes.NewReader(source)
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

// buildArgs assembles the glslc command line: source and output both on
// stdio, technique defines in declaration order.
func buildArgs(opts CompileOptions) []string {
	args := []string{
		"-x", "hlsl",
		"-fshader-stage=" + stageFlag(opts.Stage),
		"-fentry-point=" + opts.EntryPoint,
		"-fauto-bind-uniforms",
		"-fauto-map-locations",
		"-Werror",
	}
	for _, name := range opts.DefineKeys {
		value := opts.Defines[name]
		if value == "" {
			args = append(args, "-D"+name)
		} else {
			args = append(args, "-D"+name+"="+value)
		}
	}
	// Matrices are packed the same way on every target.
	args = append(args, "-Dforce_column_major=row_major")
	return append(args, "-o", "-", "-")
}

func stageFlag(kind technique.StageKind) string {
	if kind == technique.StageVertex {
		return "vertex"
	}
	return "fragment"
}
