package pathtrace

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Field-of-view bounds in degrees. Zoom operations clamp into this range so
// the thin-lens projection never degenerates.
const (
	FOVMin float32 = 10.0
	FOVMax float32 = 120.0
)

// CameraState is the CPU-owned camera description, mutated by input handling
// each frame and projected into a CameraUniform before upload.
//
// The view basis is derived from LookFrom/LookAt/Up on projection. Up must
// never be parallel to the view direction; CameraController enforces this by
// clamping pitch rotations (see maxPitchDot).
type CameraState struct {
	// LookFrom is the camera position in world space.
	LookFrom mgl32.Vec3

	// LookAt is the point the camera is aimed at.
	LookAt mgl32.Vec3

	// Up is the world-space up reference used to build the view basis.
	Up mgl32.Vec3

	// FieldOfView is the vertical field of view in degrees,
	// kept within [FOVMin, FOVMax].
	FieldOfView float32

	// DefocusAngle is the aperture cone angle in degrees. Zero disables
	// depth of field.
	DefocusAngle float32

	// FocusDistance is the distance from LookFrom to the plane of
	// perfect focus.
	FocusDistance float32

	// SamplesPerPixel is the per-dispatch sample budget of the shader.
	SamplesPerPixel uint32

	// MaxDepth bounds the ray bounce recursion in the shader.
	MaxDepth uint32

	// HasMoved is true exactly on frames where any camera parameter changed
	// since the last frame. The shader resets its accumulation history when
	// it sees the flag set.
	HasMoved bool
}

// DefaultCamera returns the stock viewpoint: slightly above and behind the
// scene origin, looking down the -Z axis, with a narrow field of view and
// visible depth of field.
//
// HasMoved starts true so the very first dispatch seeds the accumulation
// buffer instead of blending into stale contents.
func DefaultCamera() CameraState {
	return CameraState{
		LookFrom:        mgl32.Vec3{-2, 2, 1},
		LookAt:          mgl32.Vec3{0, 0, -1},
		Up:              mgl32.Vec3{0, 1, 0},
		FieldOfView:     20.0,
		DefocusAngle:    10.0,
		FocusDistance:   3.4,
		SamplesPerPixel: 200,
		MaxDepth:        50,
		HasMoved:        true,
	}
}

// Forward returns the normalized view direction (from LookFrom toward LookAt).
func (c *CameraState) Forward() mgl32.Vec3 {
	return c.LookAt.Sub(c.LookFrom).Normalize()
}

// Right returns the normalized right vector, perpendicular to the view
// direction and world up.
func (c *CameraState) Right() mgl32.Vec3 {
	return c.Forward().Cross(c.Up).Normalize()
}
