package vulkan

import "github.com/spaghettifunk/prism/engine/core"

// Native object handles. The zero value is the null handle.
type (
	ShaderModule        core.Handle
	DescriptorSetLayout core.Handle
	PipelineLayout      core.Handle
	Pipeline            core.Handle
	RenderPass          core.Handle
	CommandBuffer       core.Handle
)

func (m ShaderModule) IsValid() bool { return core.Handle(m).IsValid() }
func (p Pipeline) IsValid() bool     { return core.Handle(p).IsValid() }

// The enumerations below carry the numeric values of their Vk counterparts.

type ShaderStageFlags uint32

const (
	ShaderStageVertexBit   ShaderStageFlags = 0x00000001
	ShaderStageGeometryBit ShaderStageFlags = 0x00000008
	ShaderStageFragmentBit ShaderStageFlags = 0x00000010
	ShaderStageComputeBit  ShaderStageFlags = 0x00000020
)

type DescriptorType uint32

const (
	DescriptorTypeSampler              DescriptorType = 0
	DescriptorTypeCombinedImageSampler DescriptorType = 1
	DescriptorTypeUniformBuffer        DescriptorType = 6
	DescriptorTypeStorageBuffer        DescriptorType = 7
)

type PipelineBindPoint uint32

const (
	PipelineBindPointGraphics PipelineBindPoint = 0
	PipelineBindPointCompute  PipelineBindPoint = 1
)

type PrimitiveTopology uint32

const (
	PrimitiveTopologyPointList     PrimitiveTopology = 0
	PrimitiveTopologyLineList      PrimitiveTopology = 1
	PrimitiveTopologyLineStrip     PrimitiveTopology = 2
	PrimitiveTopologyTriangleList  PrimitiveTopology = 3
	PrimitiveTopologyTriangleStrip PrimitiveTopology = 4
)

type PolygonMode uint32

const (
	PolygonModeFill  PolygonMode = 0
	PolygonModeLine  PolygonMode = 1
	PolygonModePoint PolygonMode = 2
)

type CullModeFlags uint32

const (
	CullModeNone         CullModeFlags = 0
	CullModeFrontBit     CullModeFlags = 1
	CullModeBackBit      CullModeFlags = 2
	CullModeFrontAndBack CullModeFlags = 3
)

type FrontFace uint32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type CompareOp uint32

const (
	CompareOpNever          CompareOp = 0
	CompareOpLess           CompareOp = 1
	CompareOpEqual          CompareOp = 2
	CompareOpLessOrEqual    CompareOp = 3
	CompareOpGreater        CompareOp = 4
	CompareOpNotEqual       CompareOp = 5
	CompareOpGreaterOrEqual CompareOp = 6
	CompareOpAlways         CompareOp = 7
)

type StencilOp uint32

const (
	StencilOpKeep              StencilOp = 0
	StencilOpZero              StencilOp = 1
	StencilOpReplace           StencilOp = 2
	StencilOpIncrementAndClamp StencilOp = 3
	StencilOpDecrementAndClamp StencilOp = 4
	StencilOpInvert            StencilOp = 5
	StencilOpIncrementAndWrap  StencilOp = 6
	StencilOpDecrementAndWrap  StencilOp = 7
)

type BlendFactor uint32

const (
	BlendFactorZero                  BlendFactor = 0
	BlendFactorOne                   BlendFactor = 1
	BlendFactorSrcColor              BlendFactor = 2
	BlendFactorOneMinusSrcColor      BlendFactor = 3
	BlendFactorDstColor              BlendFactor = 4
	BlendFactorOneMinusDstColor      BlendFactor = 5
	BlendFactorSrcAlpha              BlendFactor = 6
	BlendFactorOneMinusSrcAlpha      BlendFactor = 7
	BlendFactorDstAlpha              BlendFactor = 8
	BlendFactorOneMinusDstAlpha      BlendFactor = 9
	BlendFactorConstantColor         BlendFactor = 10
	BlendFactorOneMinusConstantColor BlendFactor = 11
	BlendFactorConstantAlpha         BlendFactor = 12
	BlendFactorOneMinusConstantAlpha BlendFactor = 13
	BlendFactorSrcAlphaSaturate      BlendFactor = 14
)

type BlendOp uint32

const (
	BlendOpAdd             BlendOp = 0
	BlendOpSubtract        BlendOp = 1
	BlendOpReverseSubtract BlendOp = 2
	BlendOpMin             BlendOp = 3
	BlendOpMax             BlendOp = 4
)

type ColorComponentFlags uint32

const (
	ColorComponentRBit ColorComponentFlags = 0x1
	ColorComponentGBit ColorComponentFlags = 0x2
	ColorComponentBBit ColorComponentFlags = 0x4
	ColorComponentABit ColorComponentFlags = 0x8
)

type DynamicState uint32

const (
	DynamicStateViewport  DynamicState = 0
	DynamicStateScissor   DynamicState = 1
	DynamicStateLineWidth DynamicState = 2
)

type VertexInputRate uint32

const (
	VertexInputRateVertex   VertexInputRate = 0
	VertexInputRateInstance VertexInputRate = 1
)

type Format uint32

const (
	FormatUndefined          Format = 0
	FormatR8g8b8a8Unorm      Format = 37
	FormatR8g8b8a8Snorm      Format = 38
	FormatR8g8b8a8Uint       Format = 41
	FormatR16g16Snorm        Format = 78
	FormatR16g16Uint         Format = 81
	FormatR16g16Sfloat       Format = 83
	FormatR16g16b16a16Sfloat Format = 97
	FormatR32Uint            Format = 98
	FormatR32Sint            Format = 99
	FormatR32Sfloat          Format = 100
	FormatR32g32Sfloat       Format = 103
	FormatR32g32b32Sfloat    Format = 106
	FormatR32g32b32a32Uint   Format = 107
	FormatR32g32b32a32Sfloat Format = 109
)

/**
 * @brief A shader module paired with its stage and entry point, ready for pipeline assembly.
 */
type StageDescriptor struct {
	Stage      ShaderStageFlags
	Module     ShaderModule
	EntryPoint string
}

type DescriptorSetLayoutBinding struct {
	Binding uint32
	Type    DescriptorType
	Count   uint32
	Stages  ShaderStageFlags
}

type VertexBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type RasterizationState struct {
	DepthClamp        bool
	PolygonMode       PolygonMode
	CullMode          CullModeFlags
	FrontFace         FrontFace
	DepthBias         bool
	DepthBiasConstant float32
	DepthBiasSlope    float32
	LineWidth         float32
}

type MultisampleState struct {
	Samples         uint32
	AlphaToCoverage bool
}

type StencilOpState struct {
	FailOp      StencilOp
	PassOp      StencilOp
	DepthFailOp StencilOp
	CompareOp   CompareOp
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
}

type DepthStencilState struct {
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareOp
	StencilTest  bool
	Front        StencilOpState
	Back         StencilOpState
}

type ColorBlendAttachment struct {
	BlendEnable bool
	SrcColor    BlendFactor
	DstColor    BlendFactor
	ColorOp     BlendOp
	SrcAlpha    BlendFactor
	DstAlpha    BlendFactor
	AlphaOp     BlendOp
	WriteMask   ColorComponentFlags
}

/**
 * @brief Everything needed to create a graphics pipeline, translated from a gpu.Pipeline.
 */
type GraphicsPipelineInfo struct {
	Stages        []StageDescriptor
	Bindings      []VertexBinding
	Attributes    []VertexAttribute
	Topology      PrimitiveTopology
	Rasterization RasterizationState
	Multisample   MultisampleState
	DepthStencil  DepthStencilState
	Blend         ColorBlendAttachment
	DynamicStates []DynamicState
	Layout        PipelineLayout
	RenderPass    RenderPass
}

type ComputePipelineInfo struct {
	Stage  StageDescriptor
	Layout PipelineLayout
}
