package opengl

import (
	"fmt"
	"strings"
)

// fakeContext is an in-memory GL context. Sources containing "#error" fail to
// compile and programs with a stage containing "link_error" fail to link.
type fakeContext struct {
	major, minor int

	next     uint32
	sources  map[Shader]string
	compiled map[Shader]bool
	attached map[Program][]Shader
	linked   map[Program]bool
	vaos     map[VertexArray]bool

	shaderCompiles int
	programLinks   int
	deletedShaders int
	deletedProgs   int
	deletedVAOs    int

	blockBindings map[string]uint32
	samplerUnits  map[string]int32
	locations     map[int32]string

	calls   []string
	enabled map[Enum]bool
	attribs map[uint32]string
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		major:         4,
		minor:         1,
		sources:       make(map[Shader]string),
		compiled:      make(map[Shader]bool),
		attached:      make(map[Program][]Shader),
		linked:        make(map[Program]bool),
		vaos:          make(map[VertexArray]bool),
		blockBindings: make(map[string]uint32),
		samplerUnits:  make(map[string]int32),
		locations:     make(map[int32]string),
		enabled:       make(map[Enum]bool),
		attribs:       make(map[uint32]string),
	}
}

func (f *fakeContext) id() uint32 {
	f.next++
	return f.next
}

func (f *fakeContext) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeContext) resetCalls() { f.calls = nil }

func (f *fakeContext) Version() (int, int) { return f.major, f.minor }

func (f *fakeContext) CreateShader(kind Enum) Shader {
	s := Shader(f.id())
	f.sources[s] = ""
	return s
}

func (f *fakeContext) ShaderSource(s Shader, src string) { f.sources[s] = src }

func (f *fakeContext) CompileShader(s Shader) {
	f.shaderCompiles++
	f.compiled[s] = !strings.Contains(f.sources[s], "#error")
}

func (f *fakeContext) ShaderCompiled(s Shader) bool { return f.compiled[s] }

func (f *fakeContext) ShaderInfoLog(s Shader) string {
	if f.compiled[s] {
		return ""
	}
	return "0:1: error: #error directive"
}

func (f *fakeContext) DeleteShader(s Shader) {
	f.deletedShaders++
	delete(f.sources, s)
	delete(f.compiled, s)
}

func (f *fakeContext) CreateProgram() Program { return Program(f.id()) }

func (f *fakeContext) AttachShader(p Program, s Shader) {
	f.attached[p] = append(f.attached[p], s)
}

func (f *fakeContext) DetachShader(p Program, s Shader) {}

func (f *fakeContext) LinkProgram(p Program) {
	f.programLinks++
	ok := true
	for _, s := range f.attached[p] {
		if strings.Contains(f.sources[s], "link_error") {
			ok = false
		}
	}
	f.linked[p] = ok
}

func (f *fakeContext) ProgramLinked(p Program) bool { return f.linked[p] }

func (f *fakeContext) ProgramInfoLog(p Program) string {
	if f.linked[p] {
		return ""
	}
	return "error: unresolved symbol"
}

func (f *fakeContext) DeleteProgram(p Program) {
	f.deletedProgs++
	delete(f.linked, p)
	delete(f.attached, p)
}

func (f *fakeContext) UseProgram(p Program) { f.record("UseProgram(%d)", p) }

func (f *fakeContext) GetUniformBlockIndex(p Program, name string) uint32 {
	if name == "Missing" {
		return InvalidIndex
	}
	return uint32(len(name))
}

func (f *fakeContext) UniformBlockBinding(p Program, index, binding uint32) {
	f.blockBindings[fmt.Sprintf("%d/%d", p, index)] = binding
}

func (f *fakeContext) GetUniformLocation(p Program, name string) int32 {
	loc := int32(len(f.locations))
	f.locations[loc] = name
	return loc
}

func (f *fakeContext) Uniform1i(location int32, v int32) {
	f.samplerUnits[f.locations[location]] = v
}

func (f *fakeContext) CreateVertexArray() VertexArray {
	a := VertexArray(f.id())
	f.vaos[a] = true
	return a
}

func (f *fakeContext) BindVertexArray(a VertexArray) { f.record("BindVertexArray(%d)", a) }

func (f *fakeContext) DeleteVertexArray(a VertexArray) {
	f.deletedVAOs++
	delete(f.vaos, a)
}

func (f *fakeContext) BindBuffer(target Enum, b Buffer) { f.record("BindBuffer(%d)", b) }

func (f *fakeContext) EnableVertexAttribArray(index uint32) {}

func (f *fakeContext) VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset uintptr) {
	f.attribs[index] = fmt.Sprintf("f size=%d type=0x%X norm=%t stride=%d offset=%d", size, uint32(typ), normalized, stride, offset)
}

func (f *fakeContext) VertexAttribIPointer(index uint32, size int32, typ Enum, stride int32, offset uintptr) {
	f.attribs[index] = fmt.Sprintf("i size=%d type=0x%X stride=%d offset=%d", size, uint32(typ), stride, offset)
}

func (f *fakeContext) VertexAttribDivisor(index, divisor uint32) {
	if divisor != 0 {
		f.attribs[index] += fmt.Sprintf(" divisor=%d", divisor)
	}
}

func (f *fakeContext) Enable(c Enum) {
	f.enabled[c] = true
	f.record("Enable(0x%04X)", uint32(c))
}

func (f *fakeContext) Disable(c Enum) {
	f.enabled[c] = false
	f.record("Disable(0x%04X)", uint32(c))
}

func (f *fakeContext) CullFace(mode Enum)  { f.record("CullFace(0x%04X)", uint32(mode)) }
func (f *fakeContext) FrontFace(mode Enum) { f.record("FrontFace(0x%04X)", uint32(mode)) }

func (f *fakeContext) PolygonMode(face, mode Enum) {
	f.record("PolygonMode(0x%04X)", uint32(mode))
}

func (f *fakeContext) PolygonOffset(factor, units float32) {
	f.record("PolygonOffset(%g,%g)", factor, units)
}

func (f *fakeContext) DepthFunc(fn Enum)    { f.record("DepthFunc(0x%04X)", uint32(fn)) }
func (f *fakeContext) DepthMask(write bool) { f.record("DepthMask(%t)", write) }

func (f *fakeContext) StencilFuncSeparate(face, fn Enum, ref int32, mask uint32) {
	f.record("StencilFuncSeparate(0x%04X,0x%04X,%d,0x%X)", uint32(face), uint32(fn), ref, mask)
}

func (f *fakeContext) StencilOpSeparate(face, fail, depthFail, pass Enum) {
	f.record("StencilOpSeparate(0x%04X,0x%04X,0x%04X,0x%04X)", uint32(face), uint32(fail), uint32(depthFail), uint32(pass))
}

func (f *fakeContext) StencilMask(mask uint32) { f.record("StencilMask(0x%X)", mask) }

func (f *fakeContext) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum) {
	f.record("BlendFuncSeparate(0x%04X,0x%04X,0x%04X,0x%04X)", uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (f *fakeContext) BlendEquationSeparate(modeRGB, modeAlpha Enum) {
	f.record("BlendEquationSeparate(0x%04X,0x%04X)", uint32(modeRGB), uint32(modeAlpha))
}

func (f *fakeContext) ColorMask(r, g, b, a bool) {
	f.record("ColorMask(%t,%t,%t,%t)", r, g, b, a)
}

func (f *fakeContext) GetError() Enum { return NO_ERROR }
