package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/fpv/scene"
)

func TestShaderSourceWGSL(t *testing.T) {
	src, err := shaderSource(false)
	if err != nil {
		t.Fatalf("shaderSource failed: %v", err)
	}
	for _, entry := range []string{"fn vs_main", "fn fs_main", "instance_index"} {
		if !strings.Contains(src.WGSL, entry) {
			t.Errorf("shader source missing %q", entry)
		}
	}
}

func TestShaderCompilesToSPIRV(t *testing.T) {
	code, err := compileSPIRV(instancedShaderSource)
	if err != nil {
		t.Fatalf("compileSPIRV failed: %v", err)
	}
	if len(code) == 0 {
		t.Fatal("compileSPIRV returned no words")
	}
	if code[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", code[0])
	}
}

func TestMeshData(t *testing.T) {
	tests := []struct {
		kind scene.Kind
		want uint32
	}{
		{scene.KindTriangle, 3},
		{scene.KindQuad, 6},
		{scene.KindCamera, 0},
	}
	for _, tt := range tests {
		data := meshData(tt.kind)
		if got := vertexCount(data); got != tt.want {
			t.Errorf("vertexCount(%s) = %d, want %d", tt.kind, got, tt.want)
		}
		if got := len(meshBytes(data)); got != int(tt.want)*meshVertexStride {
			t.Errorf("len(meshBytes(%s)) = %d, want %d", tt.kind, got, int(tt.want)*meshVertexStride)
		}
	}
}
