package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/instanced.wgsl
var instancedShaderSource string

// compileSPIRV compiles WGSL to SPIR-V words with naga.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d is not word aligned", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return code, nil
}

// shaderSource returns the instanced shader as WGSL, or as SPIR-V when
// precompile is set.
func shaderSource(precompile bool) (hal.ShaderSource, error) {
	if instancedShaderSource == "" {
		return hal.ShaderSource{}, fmt.Errorf("instanced shader source is empty")
	}
	if !precompile {
		return hal.ShaderSource{WGSL: instancedShaderSource}, nil
	}
	code, err := compileSPIRV(instancedShaderSource)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: code}, nil
}
