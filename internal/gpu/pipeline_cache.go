// pipeline_cache.go owns the two compute pipelines (init and update) and
// compiles them off the tick path. A tick polls State and simply skips the
// dispatch until the pipeline it needs is Ready.

package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/pathtracer.wgsl
var pathTracerWGSL string

// WorkgroupSize is the compute shader's local size in X and Y. It matches the
// @workgroup_size attribute on both entry points in pathtracer.wgsl.
const WorkgroupSize = 8

// PipelineID names one of the two path tracer pipelines.
type PipelineID int

const (
	// PipelineInit seeds the accumulation image with a first estimate.
	PipelineInit PipelineID = iota

	// PipelineUpdate blends one more pass into the running accumulation.
	PipelineUpdate

	pipelineCount
)

// String returns the shader entry point name for the pipeline.
func (id PipelineID) String() string {
	switch id {
	case PipelineInit:
		return "init"
	case PipelineUpdate:
		return "update"
	default:
		return fmt.Sprintf("Unknown(%d)", int(id))
	}
}

// PipelineState is the compilation status of one pipeline.
type PipelineState int

const (
	// PipelineQueued means compilation has not finished yet.
	PipelineQueued PipelineState = iota

	// PipelineReady means the pipeline can be bound and dispatched.
	PipelineReady

	// PipelineFailed means compilation failed; Err carries the diagnostic.
	PipelineFailed
)

// String returns the human-readable state name.
func (s PipelineState) String() string {
	switch s {
	case PipelineQueued:
		return "queued"
	case PipelineReady:
		return "ready"
	case PipelineFailed:
		return "failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ErrShaderEmpty is returned when the embedded shader source is missing.
var ErrShaderEmpty = errors.New("gpu: embedded shader source is empty")

type pipelineEntry struct {
	state    PipelineState
	pipeline hal.ComputePipeline
	err      error
}

// PipelineCache compiles the init and update pipelines on a background
// goroutine and serves non-blocking status polls. Bind group layouts are
// created synchronously in NewPipelineCache so dependent resources (bind
// groups, buffers) can be built before compilation finishes.
type PipelineCache struct {
	device hal.Device

	imageLayout  hal.BindGroupLayout // group 0: read texture, write texture
	cameraLayout hal.BindGroupLayout // group 1: camera uniform
	sceneLayout  hal.BindGroupLayout // group 2: sphere storage, count uniform

	pipelineLayout hal.PipelineLayout
	shaderModule   hal.ShaderModule

	mu      sync.Mutex
	entries [pipelineCount]pipelineEntry

	// compileDone is closed when the background compile goroutine finishes,
	// successfully or not. Close waits on it before destroying the device
	// objects the goroutine touches.
	compileDone chan struct{}
}

// NewPipelineCache creates the bind group layouts and kicks off asynchronous
// compilation of both pipelines.
func NewPipelineCache(device hal.Device) (*PipelineCache, error) {
	c := &PipelineCache{device: device, compileDone: make(chan struct{})}

	if err := c.createLayouts(); err != nil {
		close(c.compileDone)
		c.Close()
		return nil, err
	}

	go func() {
		defer close(c.compileDone)
		c.compile()
	}()
	return c, nil
}

func (c *PipelineCache) createLayouts() error {
	imageLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pathtrace_image_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				StorageTexture: &gputypes.StorageTextureBindingLayout{
					Access:        gputypes.StorageTextureAccessReadOnly,
					Format:        gputypes.TextureFormatRGBA8Unorm,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				StorageTexture: &gputypes.StorageTextureBindingLayout{
					Access:        gputypes.StorageTextureAccessWriteOnly,
					Format:        gputypes.TextureFormatRGBA8Unorm,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create image bind group layout: %w", err)
	}
	c.imageLayout = imageLayout

	cameraLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pathtrace_camera_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create camera bind group layout: %w", err)
	}
	c.cameraLayout = cameraLayout

	sceneLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "pathtrace_scene_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create scene bind group layout: %w", err)
	}
	c.sceneLayout = sceneLayout

	pipelineLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "pathtrace_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{
			c.imageLayout,
			c.cameraLayout,
			c.sceneLayout,
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	c.pipelineLayout = pipelineLayout

	return nil
}

// compile runs on a background goroutine. It validates the WGSL through naga
// first so compile errors carry source diagnostics, then builds the shared
// shader module and both pipelines.
func (c *PipelineCache) compile() {
	module, err := c.buildModule()
	if err != nil {
		c.failAll(err)
		return
	}

	c.mu.Lock()
	c.shaderModule = module
	c.mu.Unlock()

	for id := PipelineInit; id < pipelineCount; id++ {
		pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  "pathtrace_" + id.String(),
			Layout: c.pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: id.String(),
			},
		})

		c.mu.Lock()
		if err != nil {
			c.entries[id] = pipelineEntry{
				state: PipelineFailed,
				err:   fmt.Errorf("gpu: create %s pipeline: %w", id, err),
			}
			slogger().Error("gpu: pipeline compilation failed", "pipeline", id.String(), "error", err)
		} else {
			c.entries[id] = pipelineEntry{state: PipelineReady, pipeline: pipeline}
			slogger().Debug("gpu: pipeline ready", "pipeline", id.String())
		}
		c.mu.Unlock()
	}
}

func (c *PipelineCache) buildModule() (hal.ShaderModule, error) {
	if pathTracerWGSL == "" {
		return nil, ErrShaderEmpty
	}

	spirvBytes, err := naga.Compile(pathTracerWGSL)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile path tracer shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "pathtrace_shader",
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module: %w", err)
	}
	return module, nil
}

func (c *PipelineCache) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.entries {
		c.entries[id] = pipelineEntry{state: PipelineFailed, err: err}
	}
	slogger().Error("gpu: shader compilation failed", "error", err)
}

// State polls the compilation status of one pipeline without blocking. The
// error is non-nil only when the state is PipelineFailed.
func (c *PipelineCache) State(id PipelineID) (PipelineState, error) {
	if id < 0 || id >= pipelineCount {
		return PipelineFailed, fmt.Errorf("gpu: unknown pipeline %d", int(id))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[id]
	return e.state, e.err
}

// Pipeline returns the compiled pipeline, or nil if it is not Ready.
func (c *PipelineCache) Pipeline(id PipelineID) hal.ComputePipeline {
	if id < 0 || id >= pipelineCount {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id].pipeline
}

// ImageLayout returns the bind group layout for the texture ping-pong pair.
func (c *PipelineCache) ImageLayout() hal.BindGroupLayout { return c.imageLayout }

// CameraLayout returns the bind group layout for the camera uniform.
func (c *PipelineCache) CameraLayout() hal.BindGroupLayout { return c.cameraLayout }

// SceneLayout returns the bind group layout for the sphere scene buffers.
func (c *PipelineCache) SceneLayout() hal.BindGroupLayout { return c.sceneLayout }

// Close waits for any in-flight compilation, then releases pipelines,
// layouts, and the shader module.
func (c *PipelineCache) Close() {
	if c.compileDone != nil {
		<-c.compileDone
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.entries {
		if p := c.entries[id].pipeline; p != nil {
			c.device.DestroyComputePipeline(p)
			c.entries[id].pipeline = nil
		}
	}
	if c.pipelineLayout != nil {
		c.device.DestroyPipelineLayout(c.pipelineLayout)
		c.pipelineLayout = nil
	}
	if c.sceneLayout != nil {
		c.device.DestroyBindGroupLayout(c.sceneLayout)
		c.sceneLayout = nil
	}
	if c.cameraLayout != nil {
		c.device.DestroyBindGroupLayout(c.cameraLayout)
		c.cameraLayout = nil
	}
	if c.imageLayout != nil {
		c.device.DestroyBindGroupLayout(c.imageLayout)
		c.imageLayout = nil
	}
	if c.shaderModule != nil {
		c.device.DestroyShaderModule(c.shaderModule)
		c.shaderModule = nil
	}
}
