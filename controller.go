package pathtrace

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement tuning. Units are world units (or radians / degrees) per second,
// scaled by the frame delta.
const (
	moveSpeed     float32 = 2.0
	rotateSpeed   float32 = 1.0
	verticalSpeed float32 = 1.0
	zoomSpeed     float32 = 30.0

	// maxPitchDot bounds how close the forward vector may get to world up.
	// Pitch rotations that would push |forward . up| past this are rejected,
	// which keeps the view basis from degenerating.
	maxPitchDot float32 = 0.95
)

// InputSample is one frame's worth of control state, produced by whatever
// layer owns the OS input devices. pathtrace deliberately knows nothing
// about keyboards or mice.
type InputSample struct {
	Forward, Back   bool
	StrafeL, StrafeR bool
	Climb, Descend  bool
	YawL, YawR      bool
	PitchUp, PitchDown bool

	// Zoom is a signed wheel-style delta; positive widens the field of view,
	// negative narrows it.
	Zoom float32
}

// CameraController maps frame-rate-driven input onto a CameraState. It owns
// the HasMoved bookkeeping: the flag is set in the same tick any parameter
// changes and cleared on the next tick with no change.
type CameraController struct {
	cam *CameraState
}

// NewCameraController returns a controller driving cam. The camera remains
// caller-owned; the controller only mutates it inside Apply.
func NewCameraController(cam *CameraState) *CameraController {
	return &CameraController{cam: cam}
}

// Apply advances the camera by one tick. dt is the elapsed time in seconds
// since the previous tick.
func (cc *CameraController) Apply(in InputSample, dt float32) {
	cam := cc.cam
	moved := false

	forward := cam.Forward()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	if in.Forward {
		cc.translate(forward.Mul(moveSpeed * dt))
		moved = true
	}
	if in.Back {
		cc.translate(forward.Mul(-moveSpeed * dt))
		moved = true
	}
	if in.StrafeL {
		cc.translate(right.Mul(-moveSpeed * dt))
		moved = true
	}
	if in.StrafeR {
		cc.translate(right.Mul(moveSpeed * dt))
		moved = true
	}
	if in.Climb {
		cc.translate(mgl32.Vec3{0, verticalSpeed * dt, 0})
		moved = true
	}
	if in.Descend {
		cc.translate(mgl32.Vec3{0, -verticalSpeed * dt, 0})
		moved = true
	}

	if in.YawL {
		cc.yaw(rotateSpeed * dt)
		moved = true
	}
	if in.YawR {
		cc.yaw(-rotateSpeed * dt)
		moved = true
	}
	if in.PitchUp && cc.pitch(rotateSpeed*dt) {
		moved = true
	}
	if in.PitchDown && cc.pitch(-rotateSpeed*dt) {
		moved = true
	}

	if in.Zoom != 0 {
		next := clamp32(cam.FieldOfView+in.Zoom*zoomSpeed*dt, FOVMin, FOVMax)
		if next != cam.FieldOfView {
			cam.FieldOfView = next
			moved = true
		}
	}

	// Set in the same tick anything changed; cleared the first quiet tick.
	cam.HasMoved = moved
}

// translate moves both the eye point and the aim point, preserving the
// view direction.
func (cc *CameraController) translate(delta mgl32.Vec3) {
	cc.cam.LookFrom = cc.cam.LookFrom.Add(delta)
	cc.cam.LookAt = cc.cam.LookAt.Add(delta)
}

// yaw rotates the aim point around the world Y axis through the eye point.
func (cc *CameraController) yaw(angle float32) {
	cam := cc.cam
	view := cam.LookAt.Sub(cam.LookFrom)
	length := view.Len()
	rotated := mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0}).Rotate(view).Normalize()
	cam.LookAt = cam.LookFrom.Add(rotated.Mul(length))
}

// pitch rotates the aim point around the camera's right axis. Returns false
// without mutating when the rotation would bring the forward vector within
// maxPitchDot of world up (the basis-degeneracy guard).
func (cc *CameraController) pitch(angle float32) bool {
	cam := cc.cam
	view := cam.LookAt.Sub(cam.LookFrom)
	length := view.Len()
	forward := view.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	rotated := mgl32.QuatRotate(angle, right).Rotate(forward).Normalize()
	if math32.Abs(rotated.Dot(mgl32.Vec3{0, 1, 0})) >= maxPitchDot {
		return false
	}
	cam.LookAt = cam.LookFrom.Add(rotated.Mul(length))
	return true
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
