package pathtrace

import (
	"math/rand/v2"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraUniform is the byte-exact mirror of the shader's Camera struct. The
// layout is eleven 16-byte rows, each a vec3 plus one f32 in the padding
// lane, 176 bytes total. Field order must match the WGSL declaration
// row-for-row; reordering either side breaks the upload contract.
//
// A CameraUniform is derived fresh from CameraState every frame by
// ProjectCamera and never mutated in place.
type CameraUniform struct {
	Center         mgl32.Vec3 // offset   0: eye point (same as LookFrom)
	ViewportHeight float32    // offset  12

	ViewportUpperLeft mgl32.Vec3 // offset  16: world-space top-left corner
	ViewportWidth     float32    // offset  28

	PixelDeltaU  mgl32.Vec3 // offset  32: one-pixel step along viewport U
	DefocusAngle float32    // offset  44

	PixelDeltaV mgl32.Vec3 // offset  48: one-pixel step along viewport V
	AspectRatio float32    // offset  60

	DefocusDiskU mgl32.Vec3 // offset  64: defocus disk basis (right)
	_pad0        float32    // offset  76

	ViewportU mgl32.Vec3 // offset  80: full-width viewport edge vector
	_pad1     float32    // offset  92

	DefocusDiskV mgl32.Vec3 // offset  96: defocus disk basis (up)
	MaxDepth     float32    // offset 108

	LookFrom        mgl32.Vec3 // offset 112
	SamplesPerPixel float32    // offset 124

	LookAt   mgl32.Vec3 // offset 128
	HasMoved float32    // offset 140: 1.0 resets accumulation, 0.0 blends

	Up         mgl32.Vec3 // offset 144
	RandomSeed float32    // offset 156: fresh every frame, decorrelates passes

	ViewportV     mgl32.Vec3 // offset 160: full-height viewport edge (negated)
	DefocusRadius float32    // offset 172
}

// CameraUniformSize is the byte size of the packed camera uniform.
const CameraUniformSize = uint64(unsafe.Sizeof(CameraUniform{}))

// ProjectCamera derives the per-frame GPU camera from the CPU camera state
// and the output target size, using the standard pinhole/thin-lens viewport
// construction:
//
//	theta    = radians(fov)
//	h        = tan(theta / 2)
//	vp_h     = 2 * h * focus_distance
//	vp_w     = vp_h * (width / height)
//	w        = normalize(look_from - look_at)
//	u        = normalize(cross(up, w))
//	v        = cross(w, u)
//
// ViewportV is negated so pixel (0, 0) lands at the top-left corner of the
// raster. RandomSeed is sampled fresh on every call rather than derived from
// state, which keeps successive accumulation passes decorrelated.
//
// Degenerate geometry (LookFrom == LookAt, or Up parallel to the view
// direction) is a caller precondition: CameraController prevents it, and
// ProjectCamera does not check for it.
func ProjectCamera(cam *CameraState, width, height uint32) CameraUniform {
	aspect := float32(width) / float32(height)

	theta := mgl32.DegToRad(cam.FieldOfView)
	h := math32.Tan(theta / 2)
	viewportHeight := 2 * h * cam.FocusDistance
	viewportWidth := viewportHeight * aspect

	w := cam.LookFrom.Sub(cam.LookAt).Normalize()
	u := cam.Up.Cross(w).Normalize()
	v := w.Cross(u)

	viewportU := u.Mul(viewportWidth)
	viewportV := v.Mul(-viewportHeight) // flip so +V walks down the raster

	pixelDeltaU := viewportU.Mul(1 / float32(width))
	pixelDeltaV := viewportV.Mul(1 / float32(height))

	upperLeft := cam.LookFrom.
		Sub(w.Mul(cam.FocusDistance)).
		Sub(viewportU.Mul(0.5)).
		Sub(viewportV.Mul(0.5))

	defocusRadius := cam.FocusDistance * math32.Tan(mgl32.DegToRad(cam.DefocusAngle/2))

	hasMoved := float32(0)
	if cam.HasMoved {
		hasMoved = 1
	}

	return CameraUniform{
		Center:            cam.LookFrom,
		ViewportHeight:    viewportHeight,
		ViewportUpperLeft: upperLeft,
		ViewportWidth:     viewportWidth,
		PixelDeltaU:       pixelDeltaU,
		DefocusAngle:      cam.DefocusAngle,
		PixelDeltaV:       pixelDeltaV,
		AspectRatio:       aspect,
		DefocusDiskU:      u.Mul(defocusRadius),
		ViewportU:         viewportU,
		DefocusDiskV:      v.Mul(defocusRadius),
		MaxDepth:          float32(cam.MaxDepth),
		LookFrom:          cam.LookFrom,
		SamplesPerPixel:   float32(cam.SamplesPerPixel),
		LookAt:            cam.LookAt,
		HasMoved:          hasMoved,
		Up:                cam.Up,
		RandomSeed:        rand.Float32(),
		ViewportV:         viewportV,
		DefocusRadius:     defocusRadius,
	}
}

// Basis recomputes the orthonormal view basis (u, v, w) for the camera.
// Exposed for callers that need the frame axes without a full projection.
func (c *CameraState) Basis() (u, v, w mgl32.Vec3) {
	w = c.LookFrom.Sub(c.LookAt).Normalize()
	u = c.Up.Cross(w).Normalize()
	v = w.Cross(u)
	return u, v, w
}

// Bytes serializes the uniform for GPU upload. CameraUniform contains only
// float32 fields, so the in-memory layout already matches the little-endian
// WGSL layout on every platform Go targets.
func (c *CameraUniform) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c)), CameraUniformSize) //nolint:gosec // fixed-layout struct serialization
}
