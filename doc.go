// Package pathtrace provides a progressive GPU path tracer for Go.
//
// # Overview
//
// pathtrace renders a sphere scene by repeatedly refining a pair of
// accumulation textures with a WGSL compute shader. Every frame dispatches
// one more sample pass; the longer the camera holds still, the cleaner the
// image. The package is built on the GoGPU ecosystem (gogpu/wgpu for the
// device layer, gogpu/naga for shader compilation).
//
// # Quick Start
//
//	cam := pathtrace.DefaultCamera()
//	scene := pathtrace.RandomScene(42)
//	cc := pathtrace.NewCameraController(&cam)
//
//	for running {
//	    cc.Apply(readInput(), dt)
//	    uniform := pathtrace.ProjectCamera(&cam, width, height)
//	    upload(uniform.Bytes(), scene.Pack())
//	}
//
// The pathtrace command (cmd/pathtrace) drives the full GPU session: it owns
// the device, compiles the compute shader, and ticks the accumulation loop.
//
// # Architecture
//
// The library is organized into:
//   - Public API: CameraState, CameraController, SceneState, Material, Config
//   - GPU projection: CameraUniform (the byte-exact shader mirror of the camera)
//   - internal/gpu: device bring-up, async pipeline cache, double-buffered
//     accumulation images, per-frame bindings, and the dispatch scheduler
//
// CPU-side state (camera, scene) is owned by the caller and passed explicitly
// into each tick; the GPU layer never resolves it from ambient context.
package pathtrace
