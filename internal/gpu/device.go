package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device errors.
var (
	// ErrNoBackend is returned when no HAL backend is registered.
	ErrNoBackend = errors.New("gpu: vulkan backend not available")

	// ErrNoAdapter is returned when the instance exposes no usable adapter.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")
)

// Backend owns the HAL instance, device, and queue used by the renderer.
// It is created once at startup and torn down with Close.
type Backend struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string
}

// NewBackend brings up the GPU: backend lookup, instance creation, adapter
// selection (discrete preferred, then integrated, then whatever is first),
// and device open with default limits.
func NewBackend() (*Backend, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	b := &Backend{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}

	slogger().Info("gpu: backend initialized", "adapter", b.adapterName)
	return b, nil
}

// Device returns the HAL device.
func (b *Backend) Device() hal.Device { return b.device }

// Queue returns the HAL submission queue.
func (b *Backend) Queue() hal.Queue { return b.queue }

// AdapterName returns the name of the selected GPU adapter.
func (b *Backend) AdapterName() string { return b.adapterName }

// Close releases the device and instance in reverse creation order.
func (b *Backend) Close() {
	if b.device != nil {
		b.device.Destroy()
		b.device = nil
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.queue = nil
}
