package gpu

import "github.com/gogpu/wgpu/hal"

// Presenter tracks which accumulation image holds the freshest frame. After
// each dispatched tick the written image becomes the displayed one, so a
// display layer (sprite, blit, readback) always samples the texture the
// previous dispatch finished, never the one currently being written.
type Presenter struct {
	current  int
	hasFrame bool
}

// NewPresenter returns a presenter with no frame yet.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Observe records the outcome of one tick. No-op ticks (Loading) leave the
// displayed image unchanged.
func (p *Presenter) Observe(plan DispatchPlan) {
	if !plan.Run {
		return
	}
	p.current = plan.Written
	p.hasFrame = true
}

// Current returns the displayed image index. ok is false until the first
// dispatched tick completes, when there is nothing to show yet.
func (p *Presenter) Current() (index int, ok bool) {
	return p.current, p.hasFrame
}

// View resolves the displayed image to its texture view, or nil when no
// frame has been produced.
func (p *Presenter) View(images *ImagePair) hal.TextureView {
	if !p.hasFrame {
		return nil
	}
	return images.View(p.current)
}
