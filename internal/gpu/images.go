package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ImagePair holds the two RGBA8 accumulation textures the path tracer
// ping-pongs between. Index 0 and 1 are interchangeable; which one is read
// and which is written on a given tick is the Scheduler's business.
type ImagePair struct {
	device hal.Device

	width  uint32
	height uint32

	textures [2]hal.Texture
	views    [2]hal.TextureView
}

// NewImagePair allocates both accumulation textures at the given size.
func NewImagePair(device hal.Device, width, height uint32) (*ImagePair, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("gpu: invalid image size: %dx%d", width, height)
	}

	p := &ImagePair{device: device, width: width, height: height}
	if err := p.allocate(); err != nil {
		p.release()
		return nil, err
	}
	return p, nil
}

func (p *ImagePair) allocate() error {
	for i := range p.textures {
		tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
			Label: fmt.Sprintf("pathtrace_accum_%d", i),
			Size: hal.Extent3D{
				Width:              p.width,
				Height:             p.height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage: gputypes.TextureUsageStorageBinding |
				gputypes.TextureUsageTextureBinding |
				gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: create accumulation texture %d: %w", i, err)
		}
		p.textures[i] = tex

		view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: fmt.Sprintf("pathtrace_accum_view_%d", i),
		})
		if err != nil {
			return fmt.Errorf("gpu: create accumulation view %d: %w", i, err)
		}
		p.views[i] = view
	}
	return nil
}

// Resize drops and reallocates both textures at the new size. It is a no-op
// when the size is unchanged. The caller must rebuild any bind groups that
// referenced the old views.
func (p *ImagePair) Resize(width, height uint32) (bool, error) {
	if width == p.width && height == p.height {
		return false, nil
	}
	if width == 0 || height == 0 {
		return false, fmt.Errorf("gpu: invalid image size: %dx%d", width, height)
	}

	p.release()
	p.width, p.height = width, height
	if err := p.allocate(); err != nil {
		p.release()
		return false, err
	}

	slogger().Debug("gpu: accumulation images resized", "width", width, "height", height)
	return true, nil
}

// View returns the texture view for image index 0 or 1.
func (p *ImagePair) View(i int) hal.TextureView { return p.views[i&1] }

// Size returns the current image dimensions.
func (p *ImagePair) Size() (width, height uint32) { return p.width, p.height }

func (p *ImagePair) release() {
	for i := range p.textures {
		if p.views[i] != nil {
			p.device.DestroyTextureView(p.views[i])
			p.views[i] = nil
		}
		if p.textures[i] != nil {
			p.device.DestroyTexture(p.textures[i])
			p.textures[i] = nil
		}
	}
}

// Close releases both textures and their views.
func (p *ImagePair) Close() { p.release() }
