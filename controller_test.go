package pathtrace

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestControllerMoveSetsHasMoved(t *testing.T) {
	tests := []struct {
		name string
		in   InputSample
	}{
		{"forward", InputSample{Forward: true}},
		{"back", InputSample{Back: true}},
		{"strafe left", InputSample{StrafeL: true}},
		{"strafe right", InputSample{StrafeR: true}},
		{"climb", InputSample{Climb: true}},
		{"descend", InputSample{Descend: true}},
		{"yaw left", InputSample{YawL: true}},
		{"yaw right", InputSample{YawR: true}},
		{"zoom", InputSample{Zoom: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := DefaultCamera()
			cam.HasMoved = false
			cc := NewCameraController(&cam)

			cc.Apply(tt.in, 1.0/60)
			if !cam.HasMoved {
				t.Error("HasMoved = false after input")
			}

			// First quiet tick clears the flag.
			cc.Apply(InputSample{}, 1.0/60)
			if cam.HasMoved {
				t.Error("HasMoved = true after quiet tick")
			}
		})
	}
}

func TestControllerTranslatePreservesDirection(t *testing.T) {
	cam := DefaultCamera()
	cc := NewCameraController(&cam)

	before := cam.Forward()
	cc.Apply(InputSample{Forward: true}, 0.1)
	after := cam.Forward()

	if !vecApproxEq(before, after) {
		t.Errorf("forward changed by translation: %v -> %v", before, after)
	}
}

func TestControllerYawPreservesDistance(t *testing.T) {
	cam := DefaultCamera()
	cc := NewCameraController(&cam)

	before := cam.LookAt.Sub(cam.LookFrom).Len()
	for i := 0; i < 30; i++ {
		cc.Apply(InputSample{YawL: true}, 1.0/60)
	}
	after := cam.LookAt.Sub(cam.LookFrom).Len()

	if !approxEq(before, after) {
		t.Errorf("view distance changed by yaw: %v -> %v", before, after)
	}
	if !vecApproxEq(cam.LookFrom, DefaultCamera().LookFrom) {
		t.Errorf("yaw moved the eye point: %v", cam.LookFrom)
	}
}

func TestControllerPitchClamp(t *testing.T) {
	cam := DefaultCamera()
	cc := NewCameraController(&cam)

	// Pitch up for a long time; the forward vector must never come within
	// the clamp threshold of world up.
	for i := 0; i < 600; i++ {
		cc.Apply(InputSample{PitchUp: true}, 1.0/60)
	}
	dot := cam.Forward().Dot(mgl32.Vec3{0, 1, 0})
	if dot >= maxPitchDot {
		t.Errorf("forward.up = %v, want < %v", dot, maxPitchDot)
	}

	// Once clamped, further pitch input is rejected and must not report
	// movement.
	cc.Apply(InputSample{}, 1.0/60)
	cc.Apply(InputSample{PitchUp: true}, 1.0/60)
	if cam.HasMoved {
		t.Error("HasMoved = true for a rejected pitch")
	}
}

func TestControllerZoomClamp(t *testing.T) {
	cam := DefaultCamera()
	cc := NewCameraController(&cam)

	for i := 0; i < 600; i++ {
		cc.Apply(InputSample{Zoom: -1}, 1.0/60)
	}
	if cam.FieldOfView != FOVMin {
		t.Errorf("FieldOfView = %v, want clamped to %v", cam.FieldOfView, FOVMin)
	}

	for i := 0; i < 600; i++ {
		cc.Apply(InputSample{Zoom: 1}, 1.0/60)
	}
	if cam.FieldOfView != FOVMax {
		t.Errorf("FieldOfView = %v, want clamped to %v", cam.FieldOfView, FOVMax)
	}

	// Pinned at the bound, zoom input changes nothing and must not report
	// movement.
	cc.Apply(InputSample{}, 1.0/60)
	cc.Apply(InputSample{Zoom: 1}, 1.0/60)
	if cam.HasMoved {
		t.Error("HasMoved = true for a zoom pinned at the bound")
	}
}
