// renderer.go wires the backend, pipeline cache, accumulation images,
// frame bindings, scheduler, and presenter into the one object callers use.

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pathtrace"
)

// drainTimeout is the maximum time Close waits for in-flight GPU work.
const drainTimeout = 5 * time.Second

// RendererConfig sizes the output target.
type RendererConfig struct {
	Width  uint32
	Height uint32
}

// TickInfo reports what one tick did.
type TickInfo struct {
	// State is the scheduler state after the tick.
	State State

	// Dispatched is false while pipelines are still compiling.
	Dispatched bool

	// Pipeline and Written are meaningful only when Dispatched is true.
	Pipeline PipelineID
	Written  int
}

// Renderer owns the full GPU path tracing session. It is not safe for
// concurrent use; drive it from one goroutine.
type Renderer struct {
	backend   *Backend
	cache     *PipelineCache
	images    *ImagePair
	bindings  *FrameBindings
	scheduler *Scheduler
	presenter *Presenter

	fence      hal.Fence
	fenceValue uint64

	sceneDirty bool
}

// NewRenderer brings up the device and all render resources. Pipeline
// compilation starts in the background; the first few Ticks will report
// StateLoading until it completes.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	SetLogger(pathtrace.Logger())

	backend, err := NewBackend()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		backend:    backend,
		scheduler:  NewScheduler(),
		presenter:  NewPresenter(),
		sceneDirty: true,
	}

	r.cache, err = NewPipelineCache(backend.Device())
	if err != nil {
		r.Close()
		return nil, err
	}

	r.images, err = NewImagePair(backend.Device(), cfg.Width, cfg.Height)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.bindings, err = NewFrameBindings(backend.Device(), backend.Queue(), r.cache)
	if err != nil {
		r.Close()
		return nil, err
	}

	if err := r.bindings.RebuildImages(r.cache, r.images); err != nil {
		r.Close()
		return nil, err
	}

	r.fence, err = backend.Device().CreateFence()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("gpu: create fence: %w", err)
	}

	width, height := r.images.Size()
	slogger().Info("gpu: renderer created",
		"adapter", backend.AdapterName(),
		"width", width,
		"height", height,
	)
	return r, nil
}

// Tick runs one frame: poll pipeline compilation, advance the state machine,
// upload the camera (and the scene when dirty), and dispatch the planned
// compute pass. The camera's HasMoved flag is consumed: after a dispatched
// tick it is cleared, so accumulation resumes until the next movement.
func (r *Renderer) Tick(cam *pathtrace.CameraState, scene *pathtrace.SceneState) (TickInfo, error) {
	initState, initErr := r.cache.State(PipelineInit)
	updateState, updateErr := r.cache.State(PipelineUpdate)

	width, height := r.images.Size()
	plan, err := r.scheduler.Advance(initState, updateState, initErr, updateErr, width, height)
	if err != nil {
		return TickInfo{State: r.scheduler.State()}, err
	}

	info := TickInfo{State: r.scheduler.State()}
	if !plan.Run {
		return info, nil
	}

	uniform := pathtrace.ProjectCamera(cam, width, height)
	r.bindings.UploadCamera(&uniform)
	if r.sceneDirty {
		r.bindings.UploadScene(scene)
		r.sceneDirty = false
	}

	cmdBuf, err := r.scheduler.Encode(r.backend.Device(), plan, r.cache, r.bindings)
	if err != nil {
		return info, err
	}
	defer r.backend.Device().FreeCommandBuffer(cmdBuf)

	// Fire and forget: the ping-pong role swap already orders tick N's write
	// before tick N+1's read, so no per-tick fence is needed. Close drains
	// the queue before teardown.
	if err := r.backend.Queue().Submit([]hal.CommandBuffer{cmdBuf}, nil, 0); err != nil {
		return info, fmt.Errorf("gpu: submit tick: %w", err)
	}

	cam.HasMoved = false
	r.presenter.Observe(plan)

	info.Dispatched = true
	info.Pipeline = plan.Pipeline
	info.Written = plan.Written
	return info, nil
}

// InvalidateScene marks the sphere buffers for re-upload on the next
// dispatched tick.
func (r *Renderer) InvalidateScene() { r.sceneDirty = true }

// Resize reallocates the accumulation images and rebuilds the image bind
// groups. The caller should mark the camera as moved so the stale
// accumulation is discarded.
func (r *Renderer) Resize(width, height uint32) error {
	r.waitIdle()
	changed, err := r.images.Resize(width, height)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return r.bindings.RebuildImages(r.cache, r.images)
}

// Displayed returns the texture view holding the freshest completed frame,
// or nil before the first dispatch.
func (r *Renderer) Displayed() hal.TextureView {
	return r.presenter.View(r.images)
}

// State returns the scheduler's lifecycle state.
func (r *Renderer) State() State { return r.scheduler.State() }

// AdapterName returns the name of the GPU in use.
func (r *Renderer) AdapterName() string { return r.backend.AdapterName() }

// waitIdle drains the compute queue with an empty fenced submission so no
// in-flight dispatch outlives the resources it binds.
func (r *Renderer) waitIdle() {
	if r.fence == nil {
		return
	}
	r.fenceValue++
	if err := r.backend.Queue().Submit(nil, r.fence, r.fenceValue); err != nil {
		return
	}
	if _, err := r.backend.Device().Wait(r.fence, r.fenceValue, drainTimeout); err != nil {
		slogger().Warn("gpu: drain before close failed", "error", err)
	}
}

// Close drains the queue, then tears everything down in reverse creation
// order.
func (r *Renderer) Close() {
	if r.backend != nil {
		r.waitIdle()
	}
	if r.fence != nil {
		r.backend.Device().DestroyFence(r.fence)
		r.fence = nil
	}
	if r.bindings != nil {
		r.bindings.Close()
		r.bindings = nil
	}
	if r.images != nil {
		r.images.Close()
		r.images = nil
	}
	if r.cache != nil {
		r.cache.Close()
		r.cache = nil
	}
	if r.backend != nil {
		r.backend.Close()
		r.backend = nil
	}
}
