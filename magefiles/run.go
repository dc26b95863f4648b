//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the sample shader in testdata for the SPIR-V target.
func (Run) Sample() error {
	fmt.Println("Run ashaderc on the sample shader...")
	if _, err := executeCmd("go", withArgs("run", ".", "-t", "spv", "-O", "bin", "shaderc/build/testdata/sample.hlsl"), withStream()); err != nil {
		return err
	}
	return nil
}
