package pathtrace

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialKind discriminates the CPU-side material variant.
type MaterialKind int

const (
	// MaterialDiffuse is a Lambertian surface tinted by Albedo.
	MaterialDiffuse MaterialKind = iota

	// MaterialMetal is a reflective surface; Fuzz in [0, 1] perturbs the
	// reflection direction.
	MaterialMetal

	// MaterialDielectric is a transparent surface refracting by
	// RefractiveIndex (> 1).
	MaterialDielectric
)

// String returns the material kind name.
func (k MaterialKind) String() string {
	switch k {
	case MaterialDiffuse:
		return "diffuse"
	case MaterialMetal:
		return "metal"
	case MaterialDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// diffuseMarker is the sentinel stored in the packed parameter lane for
// diffuse materials. Any negative value decodes as diffuse; this one is
// what EncodeMaterial writes.
const diffuseMarker float32 = -2.0

// Material is the CPU-side tagged material variant. It never crosses the GPU
// boundary directly: EncodeMaterial flattens it into the single-float
// parameter lane the shader reads, and DecodeMaterial reverses that.
type Material struct {
	Kind   MaterialKind
	Albedo mgl32.Vec3

	// Fuzz is the reflection perturbation radius for MaterialMetal,
	// meaningful in [0, 1).
	Fuzz float32

	// RefractiveIndex is the index of refraction for MaterialDielectric,
	// always > 1 (1.5 for common glass).
	RefractiveIndex float32
}

// Diffuse returns a Lambertian material with the given albedo.
func Diffuse(albedo mgl32.Vec3) Material {
	return Material{Kind: MaterialDiffuse, Albedo: albedo}
}

// Metal returns a reflective material. fuzz is clamped to [0, 1).
func Metal(albedo mgl32.Vec3, fuzz float32) Material {
	return Material{Kind: MaterialMetal, Albedo: albedo, Fuzz: clamp32(fuzz, 0, 0.999)}
}

// Dielectric returns a refractive material with the given index of
// refraction. Albedo is unused by the shader for dielectrics.
func Dielectric(refractiveIndex float32) Material {
	return Material{Kind: MaterialDielectric, RefractiveIndex: refractiveIndex}
}

// EncodeMaterial packs the variant into the GPU representation: an RGB albedo
// plus a single parameter lane whose sign and magnitude carry the kind.
//
//	lane < 0    diffuse
//	0 <= lane <= 1  metal, lane is the fuzz radius
//	lane > 1    dielectric, lane is the refractive index
//
// This is the transfer encoding the compute shader branches on; keeping it in
// one numeric channel means a sphere fits a single 32-byte GPU struct.
func EncodeMaterial(m Material) (albedo mgl32.Vec3, lane float32) {
	switch m.Kind {
	case MaterialMetal:
		return m.Albedo, clamp32(m.Fuzz, 0, 1)
	case MaterialDielectric:
		return m.Albedo, m.RefractiveIndex
	default:
		return m.Albedo, diffuseMarker
	}
}

// DecodeMaterial reverses EncodeMaterial. It mirrors the shader's branch
// exactly, so a CPU-side decode always agrees with what the GPU will do.
func DecodeMaterial(albedo mgl32.Vec3, lane float32) Material {
	switch {
	case lane < 0:
		return Material{Kind: MaterialDiffuse, Albedo: albedo}
	case lane <= 1:
		return Material{Kind: MaterialMetal, Albedo: albedo, Fuzz: lane}
	default:
		return Material{Kind: MaterialDielectric, Albedo: albedo, RefractiveIndex: lane}
	}
}
