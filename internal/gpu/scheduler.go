// scheduler.go sequences the render-graph state machine:
//
//	Loading -> Init -> Update(1) -> Update(0) -> Update(1) -> ...
//
// Loading waits for the init pipeline to compile. Init seeds the
// accumulation with bind group 0 and re-dispatches each tick until the
// update pipeline is also ready. Update alternates the mirrored image bind
// groups so each tick reads the previous tick's output.
//
// The state is advanced first, then the tick dispatches with the new state,
// so the Loading->Init transition and the first init dispatch land on the
// same tick.

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// State is the scheduler's position in the pipeline lifecycle.
type State int

const (
	// StateLoading means the init pipeline has not compiled yet; ticks
	// dispatch nothing.
	StateLoading State = iota

	// StateInit means the init pipeline seeds the accumulation each tick
	// while the update pipeline finishes compiling.
	StateInit

	// StateUpdate means both pipelines are ready and ticks alternate the
	// image bind groups.
	StateUpdate
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInit:
		return "init"
	case StateUpdate:
		return "update"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// DispatchPlan describes the compute work for one tick. A zero plan (Run
// false) means the tick is a no-op, which happens only while Loading.
type DispatchPlan struct {
	Run      bool
	Pipeline PipelineID

	// ImageGroup selects the mirrored image bind group: group i reads
	// image i and writes image 1-i.
	ImageGroup int

	// Written is the image index the dispatch writes, always 1-ImageGroup.
	// The presenter shows this image on the following tick.
	Written int

	GroupsX uint32
	GroupsY uint32
}

// Scheduler advances the pipeline state machine and plans each tick's
// dispatch. It holds no GPU resources; Encode borrows them per call.
type Scheduler struct {
	state    State
	groupIdx int
}

// NewScheduler returns a scheduler in the Loading state.
func NewScheduler() *Scheduler {
	return &Scheduler{state: StateLoading}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State { return s.state }

// Advance moves the state machine one tick given the polled pipeline states,
// then returns the dispatch plan for this tick at the given output size.
//
// A failed compilation is fatal: the shader is embedded, so a compile error
// is a programming bug, not a runtime condition to recover from. The error
// carries the compiler diagnostic.
func (s *Scheduler) Advance(initState, updateState PipelineState, initErr, updateErr error, width, height uint32) (DispatchPlan, error) {
	switch s.state {
	case StateLoading:
		if initState == PipelineFailed {
			return DispatchPlan{}, fmt.Errorf("gpu: init pipeline unusable: %w", initErr)
		}
		if initState == PipelineReady {
			s.state = StateInit
			slogger().Info("gpu: init pipeline ready, seeding accumulation")
		}

	case StateInit:
		if updateState == PipelineFailed {
			return DispatchPlan{}, fmt.Errorf("gpu: update pipeline unusable: %w", updateErr)
		}
		if updateState == PipelineReady {
			s.state = StateUpdate
			s.groupIdx = 1
			slogger().Info("gpu: update pipeline ready, accumulation running")
		}

	case StateUpdate:
		s.groupIdx = 1 - s.groupIdx
	}

	return s.plan(width, height), nil
}

func (s *Scheduler) plan(width, height uint32) DispatchPlan {
	groupsX := (width + WorkgroupSize - 1) / WorkgroupSize
	groupsY := (height + WorkgroupSize - 1) / WorkgroupSize

	switch s.state {
	case StateInit:
		return DispatchPlan{
			Run:        true,
			Pipeline:   PipelineInit,
			ImageGroup: 0,
			Written:    1,
			GroupsX:    groupsX,
			GroupsY:    groupsY,
		}
	case StateUpdate:
		return DispatchPlan{
			Run:        true,
			Pipeline:   PipelineUpdate,
			ImageGroup: s.groupIdx,
			Written:    1 - s.groupIdx,
			GroupsX:    groupsX,
			GroupsY:    groupsY,
		}
	default:
		return DispatchPlan{}
	}
}

// Encode records the planned dispatch into a fresh command buffer. The caller
// owns submission and eventual FreeCommandBuffer.
func (s *Scheduler) Encode(device hal.Device, plan DispatchPlan, cache *PipelineCache, fb *FrameBindings) (hal.CommandBuffer, error) {
	pipeline := cache.Pipeline(plan.Pipeline)
	if pipeline == nil {
		return nil, fmt.Errorf("gpu: pipeline %s not ready", plan.Pipeline)
	}

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "pathtrace_tick",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}

	if err := encoder.BeginEncoding("pathtrace_tick"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "pathtrace_" + plan.Pipeline.String(),
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, fb.ImageGroup(plan.ImageGroup), nil)
	pass.SetBindGroup(1, fb.CameraGroup(), nil)
	pass.SetBindGroup(2, fb.SceneGroup(), nil)
	pass.Dispatch(plan.GroupsX, plan.GroupsY, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	return cmdBuf, nil
}
