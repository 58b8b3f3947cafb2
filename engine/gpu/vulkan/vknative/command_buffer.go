package vknative

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
)

// AllocateCommandBuffer allocates a primary command buffer from the graphics pool.
func (d *Device) AllocateCommandBuffer() (vulkan.CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	buffers := make([]vk.CommandBuffer, 1)
	err := d.locks.SafeCall(vulkan.CommandBufferManagement, func() error {
		if res := vk.AllocateCommandBuffers(d.logical, &info, buffers); res != vk.Success {
			return resultError("vkAllocateCommandBuffers", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.CommandBuffer{}, err
	}
	return vulkan.CommandBuffer(d.commandBuffers.Acquire(buffers[0])), nil
}

func (d *Device) FreeCommandBuffer(cmd vulkan.CommandBuffer) {
	buffer, err := d.commandBuffers.Release(core.Handle(cmd))
	if err != nil {
		core.LogWarn("free command buffer: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(d.logical, d.commandPool, 1, []vk.CommandBuffer{buffer})
		return nil
	})
}

// Begin starts recording cmd. A single use buffer is submitted once and reset.
func (d *Device) Begin(cmd vulkan.CommandBuffer, singleUse bool) error {
	buffer, ok := d.commandBuffers.Get(core.Handle(cmd))
	if !ok {
		return core.ErrInvalidHandle
	}
	info := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if singleUse {
		info.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return d.locks.SafeCall(vulkan.CommandBufferManagement, func() error {
		if res := vk.BeginCommandBuffer(buffer, &info); res != vk.Success {
			return resultError("vkBeginCommandBuffer", res)
		}
		return nil
	})
}

func (d *Device) End(cmd vulkan.CommandBuffer) error {
	buffer, ok := d.commandBuffers.Get(core.Handle(cmd))
	if !ok {
		return core.ErrInvalidHandle
	}
	return d.locks.SafeCall(vulkan.CommandBufferManagement, func() error {
		if res := vk.EndCommandBuffer(buffer); res != vk.Success {
			return resultError("vkEndCommandBuffer", res)
		}
		return nil
	})
}

// Submit submits a recorded command buffer and waits for the queue to go idle.
func (d *Device) Submit(cmd vulkan.CommandBuffer) error {
	buffer, ok := d.commandBuffers.Get(core.Handle(cmd))
	if !ok {
		return core.ErrInvalidHandle
	}
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{buffer},
	}
	return d.locks.SafeCall(vulkan.QueueManagement, func() error {
		if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submit}, vk.NullFence); res != vk.Success {
			return resultError("vkQueueSubmit", res)
		}
		if res := vk.QueueWaitIdle(d.queue); res != vk.Success {
			return resultError("vkQueueWaitIdle", res)
		}
		return nil
	})
}
