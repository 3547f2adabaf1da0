// bindings.go manages the GPU buffers and bind groups behind the compute
// pass: the camera uniform, the packed sphere scene, and the two image bind
// groups that ping-pong the accumulation textures.

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/pathtrace"
)

// sceneInfoSize is the byte size of the sphere-count uniform, padded to the
// 16-byte minimum uniform stride.
const sceneInfoSize = 16

// FrameBindings owns the buffers uploaded each tick and the bind groups the
// compute pass binds. The image bind groups come in a mirrored pair:
//
//	group 0: read image A, write image B
//	group 1: read image B, write image A
//
// so flipping between them alternates which texture accumulates.
type FrameBindings struct {
	device hal.Device
	queue  hal.Queue

	cameraBuffer hal.Buffer
	sphereBuffer hal.Buffer
	infoBuffer   hal.Buffer

	cameraGroup hal.BindGroup
	sceneGroup  hal.BindGroup
	imageGroups [2]hal.BindGroup
}

// NewFrameBindings allocates the frame buffers and builds the buffer-backed
// bind groups. Image bind groups are built separately with RebuildImages once
// an ImagePair exists (and again after every resize).
func NewFrameBindings(device hal.Device, queue hal.Queue, cache *PipelineCache) (*FrameBindings, error) {
	fb := &FrameBindings{device: device, queue: queue}

	var err error
	fb.cameraBuffer, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pathtrace_camera",
		Size:  pathtrace.CameraUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		fb.Close()
		return nil, fmt.Errorf("gpu: create camera buffer: %w", err)
	}

	fb.sphereBuffer, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pathtrace_spheres",
		Size:  pathtrace.PackedSceneSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		fb.Close()
		return nil, fmt.Errorf("gpu: create sphere buffer: %w", err)
	}

	fb.infoBuffer, err = device.CreateBuffer(&hal.BufferDescriptor{
		Label: "pathtrace_scene_info",
		Size:  sceneInfoSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		fb.Close()
		return nil, fmt.Errorf("gpu: create scene info buffer: %w", err)
	}

	fb.cameraGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "pathtrace_camera_group",
		Layout: cache.CameraLayout(),
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: fb.cameraBuffer.NativeHandle(),
					Offset: 0,
					Size:   pathtrace.CameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		fb.Close()
		return nil, fmt.Errorf("gpu: create camera bind group: %w", err)
	}

	fb.sceneGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "pathtrace_scene_group",
		Layout: cache.SceneLayout(),
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: fb.sphereBuffer.NativeHandle(),
					Offset: 0,
					Size:   pathtrace.PackedSceneSize,
				},
			},
			{
				Binding: 1,
				Resource: gputypes.BufferBinding{
					Buffer: fb.infoBuffer.NativeHandle(),
					Offset: 0,
					Size:   sceneInfoSize,
				},
			},
		},
	})
	if err != nil {
		fb.Close()
		return nil, fmt.Errorf("gpu: create scene bind group: %w", err)
	}

	return fb, nil
}

// RebuildImages recreates the mirrored image bind groups against the current
// texture views. Called once at startup and after every ImagePair resize.
func (fb *FrameBindings) RebuildImages(cache *PipelineCache, images *ImagePair) error {
	layout := cache.ImageLayout()
	if layout == nil {
		return nil
	}

	fb.releaseImageGroups()

	for i := range fb.imageGroups {
		read := images.View(i)
		write := images.View(1 - i)

		group, err := fb.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  fmt.Sprintf("pathtrace_image_group_%d", i),
			Layout: layout,
			Entries: []gputypes.BindGroupEntry{
				{
					Binding: 0,
					Resource: gputypes.TextureViewBinding{
						TextureView: read.NativeHandle(),
					},
				},
				{
					Binding: 1,
					Resource: gputypes.TextureViewBinding{
						TextureView: write.NativeHandle(),
					},
				},
			},
		})
		if err != nil {
			fb.releaseImageGroups()
			return fmt.Errorf("gpu: create image bind group %d: %w", i, err)
		}
		fb.imageGroups[i] = group
	}
	return nil
}

// UploadCamera writes the projected camera uniform for this tick.
func (fb *FrameBindings) UploadCamera(u *pathtrace.CameraUniform) {
	fb.queue.WriteBuffer(fb.cameraBuffer, 0, u.Bytes())
}

// UploadScene writes the packed sphere buffer and the active-count uniform.
// The scene rarely changes, so callers upload only when it does.
func (fb *FrameBindings) UploadScene(s *pathtrace.SceneState) {
	fb.queue.WriteBuffer(fb.sphereBuffer, 0, s.Pack())
	fb.queue.WriteBuffer(fb.infoBuffer, 0, s.PackCount())
}

// CameraGroup returns the camera uniform bind group (shader group 1).
func (fb *FrameBindings) CameraGroup() hal.BindGroup { return fb.cameraGroup }

// SceneGroup returns the sphere scene bind group (shader group 2).
func (fb *FrameBindings) SceneGroup() hal.BindGroup { return fb.sceneGroup }

// ImageGroup returns image bind group 0 or 1 (shader group 0). Group i reads
// image i and writes image 1-i.
func (fb *FrameBindings) ImageGroup(i int) hal.BindGroup { return fb.imageGroups[i&1] }

func (fb *FrameBindings) releaseImageGroups() {
	for i := range fb.imageGroups {
		if fb.imageGroups[i] != nil {
			fb.device.DestroyBindGroup(fb.imageGroups[i])
			fb.imageGroups[i] = nil
		}
	}
}

// Close releases all bind groups and buffers.
func (fb *FrameBindings) Close() {
	fb.releaseImageGroups()
	if fb.sceneGroup != nil {
		fb.device.DestroyBindGroup(fb.sceneGroup)
		fb.sceneGroup = nil
	}
	if fb.cameraGroup != nil {
		fb.device.DestroyBindGroup(fb.cameraGroup)
		fb.cameraGroup = nil
	}
	if fb.infoBuffer != nil {
		fb.device.DestroyBuffer(fb.infoBuffer)
		fb.infoBuffer = nil
	}
	if fb.sphereBuffer != nil {
		fb.device.DestroyBuffer(fb.sphereBuffer)
		fb.sphereBuffer = nil
	}
	if fb.cameraBuffer != nil {
		fb.device.DestroyBuffer(fb.cameraBuffer)
		fb.cameraBuffer = nil
	}
}
