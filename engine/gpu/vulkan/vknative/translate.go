package vknative

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
)

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func descriptorSetLayoutBindings(bindings []vulkan.DescriptorSetLayoutBinding) []vk.DescriptorSetLayoutBinding {
	out := make([]vk.DescriptorSetLayoutBinding, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vk.DescriptorType(b.Type),
			DescriptorCount: b.Count,
			StageFlags:      vk.ShaderStageFlags(b.Stages),
		})
	}
	return out
}

func (d *Device) shaderStage(s vulkan.StageDescriptor) (vk.PipelineShaderStageCreateInfo, error) {
	module, ok := d.modules.Get(core.Handle(s.Module))
	if !ok {
		return vk.PipelineShaderStageCreateInfo{}, core.ErrInvalidHandle
	}
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFlagBits(s.Stage),
		Module: module,
		PName:  safeString(s.EntryPoint),
	}, nil
}

func vertexInputState(info *vulkan.GraphicsPipelineInfo) vk.PipelineVertexInputStateCreateInfo {
	bindings := make([]vk.VertexInputBindingDescription, 0, len(info.Bindings))
	for _, b := range info.Bindings {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRate(b.InputRate),
		})
	}
	attributes := make([]vk.VertexInputAttributeDescription, 0, len(info.Attributes))
	for _, a := range info.Attributes {
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		})
	}
	return vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
}

func stencilOpState(s vulkan.StencilOpState) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:      vk.StencilOp(s.FailOp),
		PassOp:      vk.StencilOp(s.PassOp),
		DepthFailOp: vk.StencilOp(s.DepthFailOp),
		CompareOp:   vk.CompareOp(s.CompareOp),
		CompareMask: s.CompareMask,
		WriteMask:   s.WriteMask,
		Reference:   s.Reference,
	}
}

// graphicsPipelineCreateInfo assembles the native create info. Viewport and scissor
// are dynamic, so the viewport state only carries the counts.
func (d *Device) graphicsPipelineCreateInfo(info *vulkan.GraphicsPipelineInfo) (vk.GraphicsPipelineCreateInfo, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(info.Stages))
	for _, s := range info.Stages {
		stage, err := d.shaderStage(s)
		if err != nil {
			return vk.GraphicsPipelineCreateInfo{}, err
		}
		stages = append(stages, stage)
	}
	layout, ok := d.layouts.Get(core.Handle(info.Layout))
	if !ok {
		return vk.GraphicsPipelineCreateInfo{}, core.ErrInvalidHandle
	}
	renderPass, ok := d.renderPasses.Get(core.Handle(info.RenderPass))
	if !ok {
		return vk.GraphicsPipelineCreateInfo{}, core.ErrInvalidHandle
	}

	vertexInput := vertexInputState(info)
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(info.Topology),
		PrimitiveRestartEnable: vk.False,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	r := info.Rasterization
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        bool32(r.DepthClamp),
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonMode(r.PolygonMode),
		CullMode:                vk.CullModeFlags(r.CullMode),
		FrontFace:               vk.FrontFace(r.FrontFace),
		DepthBiasEnable:         bool32(r.DepthBias),
		DepthBiasConstantFactor: r.DepthBiasConstant,
		DepthBiasSlopeFactor:    r.DepthBiasSlope,
		LineWidth:               r.LineWidth,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  vk.SampleCountFlagBits(info.Multisample.Samples),
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: bool32(info.Multisample.AlphaToCoverage),
		AlphaToOneEnable:      vk.False,
	}

	ds := info.DepthStencil
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       bool32(ds.DepthTest),
		DepthWriteEnable:      bool32(ds.DepthWrite),
		DepthCompareOp:        vk.CompareOp(ds.DepthCompare),
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     bool32(ds.StencilTest),
		Front:                 stencilOpState(ds.Front),
		Back:                  stencilOpState(ds.Back),
		MaxDepthBounds:        1.0,
	}

	b := info.Blend
	attachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         bool32(b.BlendEnable),
		SrcColorBlendFactor: vk.BlendFactor(b.SrcColor),
		DstColorBlendFactor: vk.BlendFactor(b.DstColor),
		ColorBlendOp:        vk.BlendOp(b.ColorOp),
		SrcAlphaBlendFactor: vk.BlendFactor(b.SrcAlpha),
		DstAlphaBlendFactor: vk.BlendFactor(b.DstAlpha),
		AlphaBlendOp:        vk.BlendOp(b.AlphaOp),
		ColorWriteMask:      vk.ColorComponentFlags(b.WriteMask),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{attachment},
	}

	dynamicStates := make([]vk.DynamicState, 0, len(info.DynamicStates))
	for _, s := range info.DynamicStates {
		dynamicStates = append(dynamicStates, vk.DynamicState(s))
	}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamic,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}, nil
}
