package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Standalone is a device opened by this package rather than provided by a
// host. Close releases it.
type Standalone struct {
	Instance hal.Instance
	Device   hal.Device
	Queue    hal.Queue
	Adapter  gputypes.AdapterInfo
}

// OpenBackend opens a standalone GPU device. name is "noop" for the
// in-memory backend used by tests and headless runs, or "vulkan".
func OpenBackend(name string) (*Standalone, error) {
	var backend hal.Backend
	switch name {
	case "noop":
		backend = noop.API{}
	case "vulkan":
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("gpu: vulkan backend not available")
		}
		backend = b
	default:
		return nil, fmt.Errorf("gpu: unknown backend %q", name)
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: no GPU adapters found")
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	slogger().Info("gpu: device opened", "backend", name, "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return &Standalone{
		Instance: instance,
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Adapter:  selected.Info,
	}, nil
}

// Close destroys the device and the instance.
func (s *Standalone) Close() {
	if s.Device != nil {
		s.Device.Destroy()
		s.Device = nil
	}
	if s.Instance != nil {
		s.Instance.Destroy()
		s.Instance = nil
	}
}
