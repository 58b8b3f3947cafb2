package opengl

// Enum carries a raw GLenum value.
type Enum uint32

type (
	Shader      uint32
	Program     uint32
	VertexArray uint32
	Buffer      uint32
)

const InvalidIndex = 0xFFFFFFFF

const (
	FALSE Enum = 0
	TRUE  Enum = 1

	NO_ERROR Enum = 0

	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005

	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	ZERO                     Enum = 0x0000
	ONE                      Enum = 0x0001
	SRC_COLOR                Enum = 0x0300
	ONE_MINUS_SRC_COLOR      Enum = 0x0301
	SRC_ALPHA                Enum = 0x0302
	ONE_MINUS_SRC_ALPHA      Enum = 0x0303
	DST_ALPHA                Enum = 0x0304
	ONE_MINUS_DST_ALPHA      Enum = 0x0305
	DST_COLOR                Enum = 0x0306
	ONE_MINUS_DST_COLOR      Enum = 0x0307
	SRC_ALPHA_SATURATE       Enum = 0x0308
	CONSTANT_COLOR           Enum = 0x8001
	ONE_MINUS_CONSTANT_COLOR Enum = 0x8002
	CONSTANT_ALPHA           Enum = 0x8003
	ONE_MINUS_CONSTANT_ALPHA Enum = 0x8004

	FUNC_ADD              Enum = 0x8006
	MIN                   Enum = 0x8007
	MAX                   Enum = 0x8008
	FUNC_SUBTRACT         Enum = 0x800A
	FUNC_REVERSE_SUBTRACT Enum = 0x800B

	KEEP      Enum = 0x1E00
	REPLACE   Enum = 0x1E01
	INCR      Enum = 0x1E02
	DECR      Enum = 0x1E03
	INVERT    Enum = 0x150A
	INCR_WRAP Enum = 0x8507
	DECR_WRAP Enum = 0x8508

	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408
	CW             Enum = 0x0900
	CCW            Enum = 0x0901

	POINT Enum = 0x1B00
	LINE  Enum = 0x1B01
	FILL  Enum = 0x1B02

	CULL_FACE                Enum = 0x0B44
	DEPTH_TEST               Enum = 0x0B71
	STENCIL_TEST             Enum = 0x0B90
	BLEND                    Enum = 0x0BE2
	SCISSOR_TEST             Enum = 0x0C11
	POLYGON_OFFSET_POINT     Enum = 0x2A01
	POLYGON_OFFSET_LINE      Enum = 0x2A02
	POLYGON_OFFSET_FILL      Enum = 0x8037
	MULTISAMPLE              Enum = 0x809D
	SAMPLE_ALPHA_TO_COVERAGE Enum = 0x809E
	DEPTH_CLAMP              Enum = 0x864F

	BYTE           Enum = 0x1400
	UNSIGNED_BYTE  Enum = 0x1401
	SHORT          Enum = 0x1402
	UNSIGNED_SHORT Enum = 0x1403
	INT            Enum = 0x1404
	UNSIGNED_INT   Enum = 0x1405
	FLOAT          Enum = 0x1406
	HALF_FLOAT     Enum = 0x140B

	ARRAY_BUFFER Enum = 0x8892

	FRAGMENT_SHADER Enum = 0x8B30
	VERTEX_SHADER   Enum = 0x8B31
	GEOMETRY_SHADER Enum = 0x8DD9
	COMPUTE_SHADER  Enum = 0x91B9
)

/**
 * @brief The subset of the OpenGL 4.1 core API used to realize pipelines.
 *
 * All methods must be called from the goroutine owning the GL context.
 */
type Context interface {
	// Version returns the context version, e.g. 4, 1.
	Version() (major, minor int)

	CreateShader(kind Enum) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	// ShaderCompiled reports GL_COMPILE_STATUS.
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	DetachShader(p Program, s Shader)
	LinkProgram(p Program)
	// ProgramLinked reports GL_LINK_STATUS.
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)

	GetUniformBlockIndex(p Program, name string) uint32
	UniformBlockBinding(p Program, index, binding uint32)
	GetUniformLocation(p Program, name string) int32
	Uniform1i(location int32, v int32)

	CreateVertexArray() VertexArray
	BindVertexArray(a VertexArray)
	DeleteVertexArray(a VertexArray)
	BindBuffer(target Enum, b Buffer)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset uintptr)
	VertexAttribIPointer(index uint32, size int32, typ Enum, stride int32, offset uintptr)
	VertexAttribDivisor(index, divisor uint32)

	Enable(cap Enum)
	Disable(cap Enum)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	PolygonMode(face, mode Enum)
	PolygonOffset(factor, units float32)
	DepthFunc(fn Enum)
	DepthMask(write bool)
	StencilFuncSeparate(face, fn Enum, ref int32, mask uint32)
	StencilOpSeparate(face, fail, depthFail, pass Enum)
	StencilMask(mask uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	ColorMask(r, g, b, a bool)

	GetError() Enum
}
