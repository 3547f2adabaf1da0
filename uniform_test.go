package pathtrace

import (
	"testing"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func approxEq(a, b float32) bool {
	return math32.Abs(a-b) < epsilon
}

func vecApproxEq(a, b mgl32.Vec3) bool {
	return approxEq(a.X(), b.X()) && approxEq(a.Y(), b.Y()) && approxEq(a.Z(), b.Z())
}

func TestCameraUniformLayout(t *testing.T) {
	if CameraUniformSize != 176 {
		t.Fatalf("CameraUniformSize = %d, want 176", CameraUniformSize)
	}

	var u CameraUniform
	offsets := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"Center", unsafe.Offsetof(u.Center), 0},
		{"ViewportHeight", unsafe.Offsetof(u.ViewportHeight), 12},
		{"ViewportUpperLeft", unsafe.Offsetof(u.ViewportUpperLeft), 16},
		{"ViewportWidth", unsafe.Offsetof(u.ViewportWidth), 28},
		{"PixelDeltaU", unsafe.Offsetof(u.PixelDeltaU), 32},
		{"DefocusAngle", unsafe.Offsetof(u.DefocusAngle), 44},
		{"PixelDeltaV", unsafe.Offsetof(u.PixelDeltaV), 48},
		{"AspectRatio", unsafe.Offsetof(u.AspectRatio), 60},
		{"DefocusDiskU", unsafe.Offsetof(u.DefocusDiskU), 64},
		{"ViewportU", unsafe.Offsetof(u.ViewportU), 80},
		{"DefocusDiskV", unsafe.Offsetof(u.DefocusDiskV), 96},
		{"MaxDepth", unsafe.Offsetof(u.MaxDepth), 108},
		{"LookFrom", unsafe.Offsetof(u.LookFrom), 112},
		{"SamplesPerPixel", unsafe.Offsetof(u.SamplesPerPixel), 124},
		{"LookAt", unsafe.Offsetof(u.LookAt), 128},
		{"HasMoved", unsafe.Offsetof(u.HasMoved), 140},
		{"Up", unsafe.Offsetof(u.Up), 144},
		{"RandomSeed", unsafe.Offsetof(u.RandomSeed), 156},
		{"ViewportV", unsafe.Offsetof(u.ViewportV), 160},
		{"DefocusRadius", unsafe.Offsetof(u.DefocusRadius), 172},
	}
	for _, o := range offsets {
		if o.got != o.want {
			t.Errorf("offset of %s = %d, want %d", o.name, o.got, o.want)
		}
	}
}

func TestCameraUniformBytes(t *testing.T) {
	cam := DefaultCamera()
	u := ProjectCamera(&cam, 640, 480)

	b := u.Bytes()
	if uint64(len(b)) != CameraUniformSize {
		t.Fatalf("Bytes length = %d, want %d", len(b), CameraUniformSize)
	}
}

func TestBasisOrthonormal(t *testing.T) {
	cam := DefaultCamera()
	u, v, w := cam.Basis()

	for _, c := range []struct {
		name string
		vec  mgl32.Vec3
	}{{"u", u}, {"v", v}, {"w", w}} {
		if !approxEq(c.vec.Len(), 1) {
			t.Errorf("|%s| = %v, want 1", c.name, c.vec.Len())
		}
	}
	if !approxEq(u.Dot(v), 0) || !approxEq(u.Dot(w), 0) || !approxEq(v.Dot(w), 0) {
		t.Errorf("basis not orthogonal: u.v=%v u.w=%v v.w=%v", u.Dot(v), u.Dot(w), v.Dot(w))
	}
	// w points from the aim point back toward the eye.
	want := cam.LookFrom.Sub(cam.LookAt).Normalize()
	if !vecApproxEq(w, want) {
		t.Errorf("w = %v, want %v", w, want)
	}
}

func TestProjectCamera(t *testing.T) {
	cam := CameraState{
		LookFrom:        mgl32.Vec3{0, 0, 0},
		LookAt:          mgl32.Vec3{0, 0, -1},
		Up:              mgl32.Vec3{0, 1, 0},
		FieldOfView:     60,
		DefocusAngle:    0,
		FocusDistance:   1,
		SamplesPerPixel: 16,
		MaxDepth:        8,
		HasMoved:        true,
	}
	u := ProjectCamera(&cam, 800, 400)

	if !approxEq(u.AspectRatio, 2) {
		t.Errorf("AspectRatio = %v, want 2", u.AspectRatio)
	}

	// fov 60 at focus distance 1: viewport height = 2*tan(30 deg).
	wantH := 2 * math32.Tan(mgl32.DegToRad(30))
	if !approxEq(u.ViewportHeight, wantH) {
		t.Errorf("ViewportHeight = %v, want %v", u.ViewportHeight, wantH)
	}
	if !approxEq(u.ViewportWidth, wantH*2) {
		t.Errorf("ViewportWidth = %v, want %v", u.ViewportWidth, wantH*2)
	}

	// Looking down -Z: viewport U runs along +X, viewport V down along -Y.
	if !vecApproxEq(u.ViewportU, mgl32.Vec3{u.ViewportWidth, 0, 0}) {
		t.Errorf("ViewportU = %v", u.ViewportU)
	}
	if !vecApproxEq(u.ViewportV, mgl32.Vec3{0, -u.ViewportHeight, 0}) {
		t.Errorf("ViewportV = %v", u.ViewportV)
	}

	// Walking the full viewport from the upper-left corner lands at the
	// lower-right corner.
	lowerRight := u.ViewportUpperLeft.Add(u.ViewportU).Add(u.ViewportV)
	wantLR := cam.LookFrom.
		Add(mgl32.Vec3{0, 0, -1}).
		Add(mgl32.Vec3{u.ViewportWidth / 2, -u.ViewportHeight / 2, 0})
	if !vecApproxEq(lowerRight, wantLR) {
		t.Errorf("lower-right corner = %v, want %v", lowerRight, wantLR)
	}

	// Pixel deltas cover the viewport exactly.
	if !vecApproxEq(u.PixelDeltaU.Mul(800), u.ViewportU) {
		t.Errorf("PixelDeltaU*width = %v, want %v", u.PixelDeltaU.Mul(800), u.ViewportU)
	}
	if !vecApproxEq(u.PixelDeltaV.Mul(400), u.ViewportV) {
		t.Errorf("PixelDeltaV*height = %v, want %v", u.PixelDeltaV.Mul(400), u.ViewportV)
	}

	if u.HasMoved != 1 {
		t.Errorf("HasMoved = %v, want 1", u.HasMoved)
	}
	if u.MaxDepth != 8 || u.SamplesPerPixel != 16 {
		t.Errorf("MaxDepth/SamplesPerPixel = %v/%v, want 8/16", u.MaxDepth, u.SamplesPerPixel)
	}
	if !approxEq(u.DefocusRadius, 0) {
		t.Errorf("DefocusRadius = %v, want 0 for zero defocus angle", u.DefocusRadius)
	}
}

func TestProjectCameraElevatedEye(t *testing.T) {
	// Eye above and behind the aim point: up is pure Y and the view vector
	// has no X component, so u must come out as exactly +X.
	cam := CameraState{
		LookFrom:      mgl32.Vec3{0, 1, 3},
		LookAt:        mgl32.Vec3{0, 0, -1},
		Up:            mgl32.Vec3{0, 1, 0},
		FieldOfView:   60,
		FocusDistance: 1,
	}
	u, _, _ := cam.Basis()
	if !vecApproxEq(u, mgl32.Vec3{1, 0, 0}) {
		t.Errorf("u = %v, want (1, 0, 0)", u)
	}

	proj := ProjectCamera(&cam, 1920, 1080)
	wantH := 2 * math32.Tan(mgl32.DegToRad(30))
	if !approxEq(proj.ViewportHeight, wantH) {
		t.Errorf("ViewportHeight = %v, want %v", proj.ViewportHeight, wantH)
	}
	if !approxEq(proj.ViewportWidth, wantH*1920.0/1080.0) {
		t.Errorf("ViewportWidth = %v, want %v", proj.ViewportWidth, wantH*1920.0/1080.0)
	}
}

func TestProjectCameraHasMovedFlag(t *testing.T) {
	cam := DefaultCamera()

	cam.HasMoved = false
	if u := ProjectCamera(&cam, 100, 100); u.HasMoved != 0 {
		t.Errorf("HasMoved = %v, want 0", u.HasMoved)
	}
	cam.HasMoved = true
	if u := ProjectCamera(&cam, 100, 100); u.HasMoved != 1 {
		t.Errorf("HasMoved = %v, want 1", u.HasMoved)
	}
}

func TestProjectCameraDefocusDisk(t *testing.T) {
	cam := DefaultCamera() // defocus angle 10, focus distance 3.4
	u := ProjectCamera(&cam, 640, 480)

	wantRadius := cam.FocusDistance * math32.Tan(mgl32.DegToRad(cam.DefocusAngle/2))
	if !approxEq(u.DefocusRadius, wantRadius) {
		t.Errorf("DefocusRadius = %v, want %v", u.DefocusRadius, wantRadius)
	}
	if !approxEq(u.DefocusDiskU.Len(), wantRadius) {
		t.Errorf("|DefocusDiskU| = %v, want %v", u.DefocusDiskU.Len(), wantRadius)
	}
	if !approxEq(u.DefocusDiskV.Len(), wantRadius) {
		t.Errorf("|DefocusDiskV| = %v, want %v", u.DefocusDiskV.Len(), wantRadius)
	}
	if !approxEq(u.DefocusDiskU.Dot(u.DefocusDiskV), 0) {
		t.Errorf("defocus disk axes not orthogonal: %v", u.DefocusDiskU.Dot(u.DefocusDiskV))
	}
}
