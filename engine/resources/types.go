package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown or ignored file. */
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief GLSL shader source. */
	ResourceTypeShaderSource
	/** @brief SPIR-V shader bytecode. */
	ResourceTypeShaderBinary
	/** @brief Pipeline description (shader stages, state, vertex format). */
	ResourceTypePipeline
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeText:
		return "text"
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeShaderSource:
		return "shader_source"
	case ResourceTypeShaderBinary:
		return "shader_binary"
	case ResourceTypePipeline:
		return "pipeline"
	case ResourceTypeCustom:
		return "custom"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}

/**
 * @brief Configuration for one shader stage of a pipeline description.
 */
type StageConfig struct {
	/** @brief Stage name: vertex, fragment, geometry or compute. */
	Stage string `toml:"stage"`
	/** @brief Path of the GLSL source, relative to the asset root. */
	GLSL string `toml:"glsl"`
	/** @brief Path of the SPIR-V bytecode, relative to the asset root. */
	SPIRV string `toml:"spirv"`
	/** @brief Entry point, "main" if not supplied. */
	EntryPoint string `toml:"entry_point"`
}

/**
 * @brief Configuration for a resource binding of a pipeline description.
 */
type SlotConfig struct {
	Name    string   `toml:"name"`
	Kind    string   `toml:"kind"`
	Binding uint32   `toml:"binding"`
	Stages  []string `toml:"stages"`
}

type BlendConfig struct {
	Enabled   bool   `toml:"enabled"`
	Src       string `toml:"src"`
	Dest      string `toml:"dest"`
	Op        string `toml:"op"`
	SrcAlpha  string `toml:"src_alpha"`
	DestAlpha string `toml:"dest_alpha"`
	OpAlpha   string `toml:"op_alpha"`
}

type StencilConfig struct {
	Enabled   bool   `toml:"enabled"`
	WriteMask *uint8 `toml:"write_mask"`
	ReadMask  *uint8 `toml:"read_mask"`
	Func      string `toml:"func"`
	Ref       uint8  `toml:"ref"`
	Fail      string `toml:"fail"`
	DepthFail string `toml:"depth_fail"`
	Pass      string `toml:"pass"`
}

type DepthBiasConfig struct {
	Factor float32 `toml:"factor"`
	Units  float32 `toml:"units"`
}

/**
 * @brief Fixed-function state of a pipeline description. Empty fields keep the defaults.
 */
type StateConfig struct {
	Cull            string           `toml:"cull"`
	FrontFace       string           `toml:"front_face"`
	Fill            string           `toml:"fill"`
	Primitive       string           `toml:"primitive"`
	DepthTest       *bool            `toml:"depth_test"`
	DepthWrite      *bool            `toml:"depth_write"`
	DepthFunc       string           `toml:"depth_func"`
	DepthClamp      bool             `toml:"depth_clamp"`
	Scissor         bool             `toml:"scissor"`
	AlphaToCoverage bool             `toml:"alpha_to_coverage"`
	ColorWrite      string           `toml:"color_write"`
	Blend           *BlendConfig     `toml:"blend"`
	Stencil         *StencilConfig   `toml:"stencil"`
	DepthBias       *DepthBiasConfig `toml:"depth_bias"`
}

/**
 * @brief A vertex attribute of a pipeline description.
 */
type AttributeConfig struct {
	Slot      uint32 `toml:"slot"`
	Channel   uint32 `toml:"channel"`
	Element   string `toml:"element"`
	Offset    uint32 `toml:"offset"`
	Stride    uint32 `toml:"stride"`
	Frequency string `toml:"frequency"`
}

/**
 * @brief Configuration for a named pipeline, loaded from a *.pipeline.toml file.
 */
type PipelineConfig struct {
	/** @brief The name of the pipeline to be created. */
	Name string `toml:"name"`
	/** @brief The collection of stages. */
	Stages []StageConfig `toml:"stages"`
	/** @brief The resource bindings of the program. */
	Slots []SlotConfig `toml:"slots"`
	/** @brief The fixed-function state. */
	State StateConfig `toml:"state"`
	/** @brief The vertex attributes. Empty for pipelines that pull no vertices. */
	Attributes []AttributeConfig `toml:"attributes"`
}

// Files returns every asset path referenced by the description.
func (pc *PipelineConfig) Files() []string {
	var files []string
	for _, s := range pc.Stages {
		if s.GLSL != "" {
			files = append(files, s.GLSL)
		}
		if s.SPIRV != "" {
			files = append(files, s.SPIRV)
		}
	}
	return files
}
