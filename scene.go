package pathtrace

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxSpheres is the fixed capacity of the GPU sphere buffer. The buffer is
// always uploaded at full capacity so the bind group layout never changes
// size; slots past ActiveCount are zero-filled and ignored by the shader.
const MaxSpheres = 100

// packedSphereSize is the byte size of one sphere in the GPU buffer:
// center vec3 + radius f32 + albedo vec3 + material lane f32.
const packedSphereSize = 32

// PackedSceneSize is the byte size of the full sphere storage buffer.
const PackedSceneSize = MaxSpheres * packedSphereSize

// Sphere is one renderable primitive.
type Sphere struct {
	Center   mgl32.Vec3
	Radius   float32
	Material Material
}

// SceneState is the fixed-capacity primitive list uploaded to the GPU each
// frame. It is produced by a generator at startup and may be replaced later;
// the GPU layer only ever reads it.
type SceneState struct {
	Spheres     [MaxSpheres]Sphere
	ActiveCount uint32
}

// SetSpheres replaces the scene contents. Trailing slots up to capacity are
// zeroed so a shrinking scene never leaves stale spheres in the buffer.
func (s *SceneState) SetSpheres(spheres []Sphere) error {
	if len(spheres) > MaxSpheres {
		return fmt.Errorf("pathtrace: %d spheres exceeds capacity %d", len(spheres), MaxSpheres)
	}
	copy(s.Spheres[:], spheres)
	for i := len(spheres); i < MaxSpheres; i++ {
		s.Spheres[i] = Sphere{}
	}
	s.ActiveCount = uint32(len(spheres))
	return nil
}

// Pack serializes the scene into the little-endian GPU buffer layout:
// MaxSpheres entries of 32 bytes each, regardless of ActiveCount. The shader
// reads only the first ActiveCount entries.
func (s *SceneState) Pack() []byte {
	buf := make([]byte, PackedSceneSize)
	le := binary.LittleEndian
	for i := 0; i < MaxSpheres; i++ {
		sp := &s.Spheres[i]
		albedo, lane := EncodeMaterial(sp.Material)

		off := i * packedSphereSize
		le.PutUint32(buf[off+0:], math.Float32bits(sp.Center.X()))
		le.PutUint32(buf[off+4:], math.Float32bits(sp.Center.Y()))
		le.PutUint32(buf[off+8:], math.Float32bits(sp.Center.Z()))
		le.PutUint32(buf[off+12:], math.Float32bits(sp.Radius))
		le.PutUint32(buf[off+16:], math.Float32bits(albedo.X()))
		le.PutUint32(buf[off+20:], math.Float32bits(albedo.Y()))
		le.PutUint32(buf[off+24:], math.Float32bits(albedo.Z()))
		le.PutUint32(buf[off+28:], math.Float32bits(lane))
	}
	return buf
}

// PackCount serializes the active-count uniform: one u32 padded to 16 bytes
// to satisfy uniform buffer alignment.
func (s *SceneState) PackCount() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf, s.ActiveCount)
	return buf
}

// RandomScene builds the stock demo scene: a ground sphere, a jittered grid
// of small spheres with randomized materials, and three large feature spheres
// (glass, diffuse, metal). The same seed always yields the same scene.
func RandomScene(seed uint64) SceneState {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	spheres := make([]Sphere, 0, MaxSpheres)
	spheres = append(spheres, Sphere{
		Center:   mgl32.Vec3{0, -1000, 0},
		Radius:   1000,
		Material: Diffuse(mgl32.Vec3{0.5, 0.5, 0.5}),
	})

	for a := -7; a < 7; a++ {
		for b := -7; b < 7; b++ {
			if len(spheres) >= MaxSpheres-3 {
				break
			}
			center := mgl32.Vec3{
				float32(a) + 0.9*rng.Float32(),
				0.2,
				float32(b) + 0.9*rng.Float32(),
			}
			// Keep the grid clear of the large metal sphere.
			if center.Sub(mgl32.Vec3{4, 0.2, 0}).Len() <= 0.9 {
				continue
			}

			var mat Material
			switch choose := rng.Float32(); {
			case choose < 0.8:
				mat = Diffuse(mgl32.Vec3{
					rng.Float32() * rng.Float32(),
					rng.Float32() * rng.Float32(),
					rng.Float32() * rng.Float32(),
				})
			case choose < 0.95:
				mat = Metal(mgl32.Vec3{
					0.5 * (1 + rng.Float32()),
					0.5 * (1 + rng.Float32()),
					0.5 * (1 + rng.Float32()),
				}, 0.5*rng.Float32())
			default:
				mat = Dielectric(1.5)
			}
			spheres = append(spheres, Sphere{Center: center, Radius: 0.2, Material: mat})
		}
	}

	spheres = append(spheres,
		Sphere{Center: mgl32.Vec3{0, 1, 0}, Radius: 1, Material: Dielectric(1.5)},
		Sphere{Center: mgl32.Vec3{-4, 1, 0}, Radius: 1, Material: Diffuse(mgl32.Vec3{0.4, 0.2, 0.1})},
		Sphere{Center: mgl32.Vec3{4, 1, 0}, Radius: 1, Material: Metal(mgl32.Vec3{0.7, 0.6, 0.5}, 0)},
	)

	var scene SceneState
	// Capacity is respected by construction above.
	_ = scene.SetSpheres(spheres)
	return scene
}
