package vknative

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
)

func (d *Device) CreateShaderModule(code []uint32) (vulkan.ShaderModule, error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	err := d.locks.SafeCall(vulkan.ShaderManagement, func() error {
		if res := vk.CreateShaderModule(d.logical, &info, nil, &module); res != vk.Success {
			return resultError("vkCreateShaderModule", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.ShaderModule{}, err
	}
	return vulkan.ShaderModule(d.modules.Acquire(module)), nil
}

func (d *Device) DestroyShaderModule(m vulkan.ShaderModule) {
	module, err := d.modules.Release(core.Handle(m))
	if err != nil {
		core.LogWarn("destroy shader module: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.ShaderManagement, func() error {
		vk.DestroyShaderModule(d.logical, module, nil)
		return nil
	})
}

func (d *Device) CreateDescriptorSetLayout(bindings []vulkan.DescriptorSetLayoutBinding) (vulkan.DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    descriptorSetLayoutBindings(bindings),
	}
	var layout vk.DescriptorSetLayout
	err := d.locks.SafeCall(vulkan.DescriptorManagement, func() error {
		if res := vk.CreateDescriptorSetLayout(d.logical, &info, nil, &layout); res != vk.Success {
			return resultError("vkCreateDescriptorSetLayout", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.DescriptorSetLayout{}, err
	}
	return vulkan.DescriptorSetLayout(d.setLayouts.Acquire(layout)), nil
}

func (d *Device) DestroyDescriptorSetLayout(l vulkan.DescriptorSetLayout) {
	layout, err := d.setLayouts.Release(core.Handle(l))
	if err != nil {
		core.LogWarn("destroy descriptor set layout: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.DescriptorManagement, func() error {
		vk.DestroyDescriptorSetLayout(d.logical, layout, nil)
		return nil
	})
}

func (d *Device) CreatePipelineLayout(setLayouts []vulkan.DescriptorSetLayout) (vulkan.PipelineLayout, error) {
	native := make([]vk.DescriptorSetLayout, 0, len(setLayouts))
	for _, l := range setLayouts {
		layout, ok := d.setLayouts.Get(core.Handle(l))
		if !ok {
			return vulkan.PipelineLayout{}, core.ErrInvalidHandle
		}
		native = append(native, layout)
	}
	info := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(native)),
		PSetLayouts:    native,
	}
	var layout vk.PipelineLayout
	err := d.locks.SafeCall(vulkan.PipelineManagement, func() error {
		if res := vk.CreatePipelineLayout(d.logical, &info, nil, &layout); res != vk.Success {
			return resultError("vkCreatePipelineLayout", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.PipelineLayout{}, err
	}
	return vulkan.PipelineLayout(d.layouts.Acquire(layout)), nil
}

func (d *Device) DestroyPipelineLayout(l vulkan.PipelineLayout) {
	layout, err := d.layouts.Release(core.Handle(l))
	if err != nil {
		core.LogWarn("destroy pipeline layout: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.PipelineManagement, func() error {
		vk.DestroyPipelineLayout(d.logical, layout, nil)
		return nil
	})
}

func (d *Device) CreateGraphicsPipeline(info *vulkan.GraphicsPipelineInfo) (vulkan.Pipeline, error) {
	createInfo, err := d.graphicsPipelineCreateInfo(info)
	if err != nil {
		return vulkan.Pipeline{}, err
	}
	pipelines := make([]vk.Pipeline, 1)
	err = d.locks.SafeCall(vulkan.PipelineManagement, func() error {
		res := vk.CreateGraphicsPipelines(d.logical, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)
		if res != vk.Success {
			return resultError("vkCreateGraphicsPipelines", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.Pipeline{}, err
	}
	core.LogDebug("Graphics pipeline created!")
	return vulkan.Pipeline(d.pipelines.Acquire(pipelines[0])), nil
}

func (d *Device) CreateComputePipeline(info *vulkan.ComputePipelineInfo) (vulkan.Pipeline, error) {
	stage, err := d.shaderStage(info.Stage)
	if err != nil {
		return vulkan.Pipeline{}, err
	}
	layout, ok := d.layouts.Get(core.Handle(info.Layout))
	if !ok {
		return vulkan.Pipeline{}, core.ErrInvalidHandle
	}
	createInfo := vk.ComputePipelineCreateInfo{
		SType:             vk.StructureTypeComputePipelineCreateInfo,
		Stage:             stage,
		Layout:            layout,
		BasePipelineIndex: -1,
	}
	pipelines := make([]vk.Pipeline, 1)
	err = d.locks.SafeCall(vulkan.PipelineManagement, func() error {
		res := vk.CreateComputePipelines(d.logical, vk.NullPipelineCache, 1, []vk.ComputePipelineCreateInfo{createInfo}, nil, pipelines)
		if res != vk.Success {
			return resultError("vkCreateComputePipelines", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.Pipeline{}, err
	}
	core.LogDebug("Compute pipeline created!")
	return vulkan.Pipeline(d.pipelines.Acquire(pipelines[0])), nil
}

func (d *Device) DestroyPipeline(p vulkan.Pipeline) {
	pipeline, err := d.pipelines.Release(core.Handle(p))
	if err != nil {
		core.LogWarn("destroy pipeline: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.PipelineManagement, func() error {
		vk.DestroyPipeline(d.logical, pipeline, nil)
		return nil
	})
}

func (d *Device) CmdBindPipeline(cmd vulkan.CommandBuffer, bindPoint vulkan.PipelineBindPoint, p vulkan.Pipeline) {
	buffer, ok := d.commandBuffers.Get(core.Handle(cmd))
	if !ok {
		core.LogError("bind pipeline: unknown command buffer %s", core.Handle(cmd))
		return
	}
	pipeline, ok := d.pipelines.Get(core.Handle(p))
	if !ok {
		core.LogError("bind pipeline: unknown pipeline %s", core.Handle(p))
		return
	}
	_ = d.locks.SafeCall(vulkan.CommandBufferManagement, func() error {
		vk.CmdBindPipeline(buffer, vk.PipelineBindPoint(bindPoint), pipeline)
		return nil
	})
}

// Live returns the number of native objects created through the device and not destroyed yet.
func (d *Device) Live() int {
	return d.modules.Len() + d.setLayouts.Len() + d.layouts.Len() + d.pipelines.Len()
}
