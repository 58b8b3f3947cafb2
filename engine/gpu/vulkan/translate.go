package vulkan

import (
	"github.com/spaghettifunk/prism/engine/gpu"
)

func stageFlag(stage gpu.ShaderStage) (ShaderStageFlags, bool) {
	switch stage {
	case gpu.StageVertex:
		return ShaderStageVertexBit, true
	case gpu.StageFragment:
		return ShaderStageFragmentBit, true
	case gpu.StageGeometry:
		return ShaderStageGeometryBit, true
	case gpu.StageCompute:
		return ShaderStageComputeBit, true
	}
	return 0, false
}

func stageFlags(mask gpu.StageMask) ShaderStageFlags {
	var flags ShaderStageFlags
	for _, s := range []gpu.ShaderStage{gpu.StageVertex, gpu.StageFragment, gpu.StageGeometry, gpu.StageCompute} {
		if mask.Has(s) {
			f, _ := stageFlag(s)
			flags |= f
		}
	}
	return flags
}

func descriptorType(k gpu.SlotKind) DescriptorType {
	switch k {
	case gpu.SlotTexture:
		return DescriptorTypeCombinedImageSampler
	case gpu.SlotSampler:
		return DescriptorTypeSampler
	case gpu.SlotStorageBuffer:
		return DescriptorTypeStorageBuffer
	}
	return DescriptorTypeUniformBuffer
}

// descriptorBindings maps the program slots onto descriptor set 0.
func descriptorBindings(slots []gpu.Slot) []DescriptorSetLayoutBinding {
	bindings := make([]DescriptorSetLayoutBinding, 0, len(slots))
	for _, s := range slots {
		bindings = append(bindings, DescriptorSetLayoutBinding{
			Binding: s.Binding,
			Type:    descriptorType(s.Kind),
			Count:   1,
			Stages:  stageFlags(s.Stages),
		})
	}
	return bindings
}

func topology(p gpu.Primitive) PrimitiveTopology {
	switch p {
	case gpu.PrimitiveTriangleStrip:
		return PrimitiveTopologyTriangleStrip
	case gpu.PrimitiveLines:
		return PrimitiveTopologyLineList
	case gpu.PrimitiveLineStrip:
		return PrimitiveTopologyLineStrip
	case gpu.PrimitivePoints:
		return PrimitiveTopologyPointList
	}
	return PrimitiveTopologyTriangleList
}

func cullMode(m gpu.CullMode) CullModeFlags {
	switch m {
	case gpu.CullNone:
		return CullModeNone
	case gpu.CullFront:
		return CullModeFrontBit
	case gpu.CullFrontAndBack:
		return CullModeFrontAndBack
	}
	return CullModeBackBit
}

func polygonMode(m gpu.FillMode) PolygonMode {
	switch m {
	case gpu.FillLine:
		return PolygonModeLine
	case gpu.FillPoint:
		return PolygonModePoint
	}
	return PolygonModeFill
}

func compareOp(f gpu.ComparisonFunc) CompareOp {
	return CompareOp(f)
}

var stencilOps = [...]StencilOp{
	gpu.StencilKeep:    StencilOpKeep,
	gpu.StencilZero:    StencilOpZero,
	gpu.StencilReplace: StencilOpReplace,
	gpu.StencilIncrSat: StencilOpIncrementAndClamp,
	gpu.StencilDecrSat: StencilOpDecrementAndClamp,
	gpu.StencilInvert:  StencilOpInvert,
	gpu.StencilIncr:    StencilOpIncrementAndWrap,
	gpu.StencilDecr:    StencilOpDecrementAndWrap,
}

func stencilOp(op gpu.StencilOp) StencilOp {
	if int(op) < len(stencilOps) {
		return stencilOps[op]
	}
	return StencilOpKeep
}

var blendFactors = [...]BlendFactor{
	gpu.BlendZero:           BlendFactorZero,
	gpu.BlendOne:            BlendFactorOne,
	gpu.BlendSrcColor:       BlendFactorSrcColor,
	gpu.BlendInvSrcColor:    BlendFactorOneMinusSrcColor,
	gpu.BlendSrcAlpha:       BlendFactorSrcAlpha,
	gpu.BlendInvSrcAlpha:    BlendFactorOneMinusSrcAlpha,
	gpu.BlendDestAlpha:      BlendFactorDstAlpha,
	gpu.BlendInvDestAlpha:   BlendFactorOneMinusDstAlpha,
	gpu.BlendDestColor:      BlendFactorDstColor,
	gpu.BlendInvDestColor:   BlendFactorOneMinusDstColor,
	gpu.BlendSrcAlphaSat:    BlendFactorSrcAlphaSaturate,
	gpu.BlendFactorColor:    BlendFactorConstantColor,
	gpu.BlendInvFactorColor: BlendFactorOneMinusConstantColor,
	gpu.BlendFactorAlpha:    BlendFactorConstantAlpha,
	gpu.BlendInvFactorAlpha: BlendFactorOneMinusConstantAlpha,
}

func blendFactor(a gpu.BlendArg) BlendFactor {
	if int(a) < len(blendFactors) {
		return blendFactors[a]
	}
	return BlendFactorOne
}

func blendOp(op gpu.BlendOp) BlendOp {
	switch op {
	case gpu.BlendOpSubtract:
		return BlendOpSubtract
	case gpu.BlendOpRevSubtract:
		return BlendOpReverseSubtract
	case gpu.BlendOpMin:
		return BlendOpMin
	case gpu.BlendOpMax:
		return BlendOpMax
	}
	return BlendOpAdd
}

var vertexFormats = map[gpu.ElementType]Format{
	gpu.ElementFloat32:     FormatR32Sfloat,
	gpu.ElementFloat32x2:   FormatR32g32Sfloat,
	gpu.ElementFloat32x3:   FormatR32g32b32Sfloat,
	gpu.ElementFloat32x4:   FormatR32g32b32a32Sfloat,
	gpu.ElementFloat16x2:   FormatR16g16Sfloat,
	gpu.ElementFloat16x4:   FormatR16g16b16a16Sfloat,
	gpu.ElementUint8x4:     FormatR8g8b8a8Uint,
	gpu.ElementUint8x4Norm: FormatR8g8b8a8Unorm,
	gpu.ElementInt8x4Norm:  FormatR8g8b8a8Snorm,
	gpu.ElementUint16x2:    FormatR16g16Uint,
	gpu.ElementInt16x2Norm: FormatR16g16Snorm,
	gpu.ElementUint32:      FormatR32Uint,
	gpu.ElementInt32:       FormatR32Sint,
	gpu.ElementUint32x4:    FormatR32g32b32a32Uint,
}

func vertexFormat(e gpu.ElementType) Format {
	if f, ok := vertexFormats[e]; ok {
		return f
	}
	return FormatUndefined
}

// vertexInput translates a format into binding and attribute descriptions. A nil
// format pulls no vertices.
func vertexInput(f *gpu.Format) ([]VertexBinding, []VertexAttribute) {
	if f == nil {
		return nil, nil
	}
	channels := f.Channels()
	bindings := make([]VertexBinding, 0, len(channels))
	for _, ch := range channels {
		rate := VertexInputRateVertex
		if ch.Frequency == gpu.PerInstance {
			rate = VertexInputRateInstance
		}
		bindings = append(bindings, VertexBinding{Binding: ch.Index, Stride: ch.Stride, InputRate: rate})
	}
	attrs := f.Attributes()
	attributes := make([]VertexAttribute, 0, len(attrs))
	for _, a := range attrs {
		attributes = append(attributes, VertexAttribute{
			Location: a.Slot,
			Binding:  a.Channel,
			Format:   vertexFormat(a.Element),
			Offset:   a.Offset,
		})
	}
	return bindings, attributes
}

func stencilFace(f gpu.StencilFace, writeMask uint8) StencilOpState {
	return StencilOpState{
		FailOp:      stencilOp(f.Fail),
		PassOp:      stencilOp(f.Pass),
		DepthFailOp: stencilOp(f.DepthFail),
		CompareOp:   compareOp(f.Func),
		CompareMask: uint32(f.ReadMask),
		WriteMask:   uint32(writeMask),
		Reference:   uint32(f.Ref),
	}
}

// graphicsPipelineInfo translates the fixed-function state and vertex format of a
// pipeline. Stages, layout and render pass are filled in by the caller.
func graphicsPipelineInfo(s gpu.State, f *gpu.Format, samples uint32) *GraphicsPipelineInfo {
	info := &GraphicsPipelineInfo{
		Topology: topology(s.Primitive),
		Rasterization: RasterizationState{
			DepthClamp:  s.DepthClamp,
			PolygonMode: polygonMode(s.Fill),
			CullMode:    cullMode(s.Cull),
			FrontFace:   FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		Multisample: MultisampleState{
			Samples:         1,
			AlphaToCoverage: s.AlphaToCoverage,
		},
		DepthStencil: DepthStencilState{
			DepthTest:    s.Depth.Enabled,
			DepthWrite:   s.Depth.Enabled && s.Depth.Write,
			DepthCompare: compareOp(s.Depth.Func),
			StencilTest:  s.Stencil.Enabled,
			Front:        stencilFace(s.Stencil.Front, s.Stencil.WriteMask),
			Back:         stencilFace(s.Stencil.Back, s.Stencil.WriteMask),
		},
		Blend: ColorBlendAttachment{
			BlendEnable: s.Blend.Enabled,
			SrcColor:    blendFactor(s.Blend.SrcColor),
			DstColor:    blendFactor(s.Blend.DestColor),
			ColorOp:     blendOp(s.Blend.OpColor),
			SrcAlpha:    blendFactor(s.Blend.SrcAlpha),
			DstAlpha:    blendFactor(s.Blend.DestAlpha),
			AlphaOp:     blendOp(s.Blend.OpAlpha),
			WriteMask:   ColorComponentFlags(s.ColorWrite),
		},
		DynamicStates: []DynamicState{
			DynamicStateViewport,
			DynamicStateScissor,
			DynamicStateLineWidth,
		},
	}
	if s.FrontFace == gpu.FrontFaceClockwise {
		info.Rasterization.FrontFace = FrontFaceClockwise
	}
	if s.DepthBias.Enabled {
		info.Rasterization.DepthBias = true
		info.Rasterization.DepthBiasConstant = s.DepthBias.Units
		info.Rasterization.DepthBiasSlope = s.DepthBias.Factor
	}
	if s.Multisample && samples > 1 {
		info.Multisample.Samples = samples
	}
	info.Bindings, info.Attributes = vertexInput(f)
	return info
}
