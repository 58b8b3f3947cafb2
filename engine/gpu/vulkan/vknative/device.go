package vknative

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
)

var _ vulkan.Device = (*Device)(nil)

/**
 * @brief A headless Vulkan logical device implementing vulkan.Device.
 *
 * Native objects live in generational handle tables; the vulkan package only
 * ever sees the handles. Calls are serialized per object group through a
 * vulkan.LockPool.
 */
type Device struct {
	instance vk.Instance
	debug    vk.DebugReportCallback
	physical vk.PhysicalDevice
	logical  vk.Device

	queueIndex  uint32
	queue       vk.Queue
	commandPool vk.CommandPool
	depthFormat vk.Format
	deviceName  string

	locks *vulkan.LockPool

	modules        *core.HandleTable[vk.ShaderModule]
	setLayouts     *core.HandleTable[vk.DescriptorSetLayout]
	layouts        *core.HandleTable[vk.PipelineLayout]
	pipelines      *core.HandleTable[vk.Pipeline]
	renderPasses   *core.HandleTable[vk.RenderPass]
	commandBuffers *core.HandleTable[vk.CommandBuffer]
}

// New creates the instance, selects the first physical device with a graphics and
// compute capable queue and creates the logical device on it.
func New(cfg Config) (*Device, error) {
	d := &Device{
		locks:          vulkan.NewLockPool(),
		modules:        core.NewHandleTable[vk.ShaderModule](64),
		setLayouts:     core.NewHandleTable[vk.DescriptorSetLayout](64),
		layouts:        core.NewHandleTable[vk.PipelineLayout](64),
		pipelines:      core.NewHandleTable[vk.Pipeline](64),
		renderPasses:   core.NewHandleTable[vk.RenderPass](4),
		commandBuffers: core.NewHandleTable[vk.CommandBuffer](8),
	}

	instance, err := createInstance(cfg)
	if err != nil {
		return nil, err
	}
	d.instance = instance

	if cfg.Validation {
		if d.debug, err = createDebugCallback(instance); err != nil {
			d.Close()
			return nil, err
		}
	}
	if err := d.selectPhysicalDevice(); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		d.Close()
		return nil, err
	}
	d.detectDepthFormat()
	core.LogInfo("Vulkan device `%s` ready.", d.deviceName)
	return d, nil
}

func (d *Device) Name() string {
	return d.deviceName
}

func (d *Device) selectPhysicalDevice() error {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(d.instance, &count, nil); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return fmt.Errorf("no devices which support Vulkan were found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(d.instance, &count, devices); res != vk.Success {
		return resultError("vkEnumeratePhysicalDevices", res)
	}

	required := vk.QueueFlags(vk.QueueGraphicsBit) | vk.QueueFlags(vk.QueueComputeBit)
	for _, pd := range devices {
		var properties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &properties)
		properties.Deref()
		name := cString(properties.DeviceName[:])

		var familyCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, nil)
		families := make([]vk.QueueFamilyProperties, familyCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(pd, &familyCount, families)
		for i := range families {
			families[i].Deref()
			if families[i].QueueFlags&required == required {
				d.physical = pd
				d.queueIndex = uint32(i)
				d.deviceName = name
				core.LogInfo("Selected device: '%s', API version %d.%d.%d.", name,
					vk.Version(properties.ApiVersion).Major(),
					vk.Version(properties.ApiVersion).Minor(),
					vk.Version(properties.ApiVersion).Patch())
				return nil
			}
		}
		core.LogInfo("Device '%s' has no graphics and compute queue, skipping.", name)
	}
	return fmt.Errorf("no physical devices were found which meet the requirements")
}

func (d *Device) createLogicalDevice() error {
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: d.queueIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}

	var extensions []string
	if d.hasExtension("VK_KHR_portability_subset") {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensions = append(extensions, "VK_KHR_portability_subset")
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}
	var logical vk.Device
	if res := vk.CreateDevice(d.physical, &createInfo, nil, &logical); res != vk.Success {
		return resultError("vkCreateDevice", res)
	}
	d.logical = logical
	core.LogInfo("Logical device created.")

	var queue vk.Queue
	vk.GetDeviceQueue(d.logical, d.queueIndex, 0, &queue)
	d.queue = queue

	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.logical, &poolInfo, nil, &pool); res != vk.Success {
		return resultError("vkCreateCommandPool", res)
	}
	d.commandPool = pool
	return nil
}

func (d *Device) hasExtension(name string) bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(d.physical, "", &count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(d.physical, "", &count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if cString(available[i].ExtensionName[:]) == name {
			return true
		}
	}
	return false
}

func (d *Device) detectDepthFormat() {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(d.physical, candidate, &properties)
		properties.Deref()
		if properties.LinearTilingFeatures&flags == flags || properties.OptimalTilingFeatures&flags == flags {
			d.depthFormat = candidate
			return
		}
	}
	d.depthFormat = vk.FormatUndefined
	core.LogWarn("No depth format available, render passes have no depth attachment.")
}

func (d *Device) WaitIdle() error {
	return d.locks.SafeCall(vulkan.DeviceManagement, func() error {
		if res := vk.DeviceWaitIdle(d.logical); res != vk.Success {
			return resultError("vkDeviceWaitIdle", res)
		}
		return nil
	})
}

// Close destroys every object still alive, then the device and the instance.
func (d *Device) Close() {
	if d.logical != nil {
		_ = d.WaitIdle()
		d.commandBuffers.Each(func(_ core.Handle, cmd vk.CommandBuffer) {
			vk.FreeCommandBuffers(d.logical, d.commandPool, 1, []vk.CommandBuffer{cmd})
		})
		d.pipelines.Each(func(_ core.Handle, p vk.Pipeline) { vk.DestroyPipeline(d.logical, p, nil) })
		d.layouts.Each(func(_ core.Handle, l vk.PipelineLayout) { vk.DestroyPipelineLayout(d.logical, l, nil) })
		d.setLayouts.Each(func(_ core.Handle, l vk.DescriptorSetLayout) { vk.DestroyDescriptorSetLayout(d.logical, l, nil) })
		d.modules.Each(func(_ core.Handle, m vk.ShaderModule) { vk.DestroyShaderModule(d.logical, m, nil) })
		d.renderPasses.Each(func(_ core.Handle, rp vk.RenderPass) { vk.DestroyRenderPass(d.logical, rp, nil) })
		if d.commandPool != nil {
			vk.DestroyCommandPool(d.logical, d.commandPool, nil)
		}
		core.LogInfo("Destroying logical device...")
		vk.DestroyDevice(d.logical, nil)
		d.logical = nil
	}
	if d.debug != nil {
		vk.DestroyDebugReportCallback(d.instance, d.debug, nil)
		d.debug = nil
	}
	if d.instance != nil {
		vk.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}
