package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

func TestShaderSourceEmbedded(t *testing.T) {
	if pathTracerWGSL == "" {
		t.Fatal("path tracer shader source is empty")
	}
	for _, entry := range []string{"fn init(", "fn update("} {
		if !strings.Contains(pathTracerWGSL, entry) {
			t.Errorf("shader missing entry point %q", entry)
		}
	}
	if !strings.Contains(pathTracerWGSL, "@workgroup_size(8, 8, 1)") {
		t.Error("shader workgroup size does not match WorkgroupSize")
	}
}

func TestShaderCompiles(t *testing.T) {
	spirvBytes, err := naga.Compile(pathTracerWGSL)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") {
			t.Skipf("Skipping: naga limitation: %v", err)
		}
		t.Fatalf("shader compilation failed: %v", err)
	}
	if len(spirvBytes) == 0 || len(spirvBytes)%4 != 0 {
		t.Fatalf("SPIR-V output length = %d, want non-zero multiple of 4", len(spirvBytes))
	}
}

func TestRebuildImagesNoLayout(t *testing.T) {
	// Before layouts exist there is nothing to bind; RebuildImages must be a
	// silent no-op rather than touching the device.
	var fb FrameBindings
	if err := fb.RebuildImages(&PipelineCache{}, nil); err != nil {
		t.Fatalf("RebuildImages() = %v", err)
	}
}
