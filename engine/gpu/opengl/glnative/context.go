// Package glnative implements opengl.Context on top of the go-gl 4.1 core bindings.
package glnative

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/opengl"
)

type Context struct {
	major, minor int
}

var _ opengl.Context = (*Context)(nil)

// New loads the GL function pointers. A GL context must be current on the calling thread.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	core.LogInfo("OpenGL version %s, renderer %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	return &Context{major: int(major), minor: int(minor)}, nil
}

func (c *Context) Version() (int, int) {
	return c.major, c.minor
}

func (c *Context) CreateShader(kind opengl.Enum) opengl.Shader {
	return opengl.Shader(gl.CreateShader(uint32(kind)))
}

func (c *Context) ShaderSource(s opengl.Shader, src string) {
	csource, free := gl.Strs(src + "\x00")
	gl.ShaderSource(uint32(s), 1, csource, nil)
	free()
}

func (c *Context) CompileShader(s opengl.Shader) {
	gl.CompileShader(uint32(s))
}

func (c *Context) ShaderCompiled(s opengl.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ShaderInfoLog(s opengl.Shader) string {
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00\n")
}

func (c *Context) DeleteShader(s opengl.Shader) {
	gl.DeleteShader(uint32(s))
}

func (c *Context) CreateProgram() opengl.Program {
	return opengl.Program(gl.CreateProgram())
}

func (c *Context) AttachShader(p opengl.Program, s opengl.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

func (c *Context) DetachShader(p opengl.Program, s opengl.Shader) {
	gl.DetachShader(uint32(p), uint32(s))
}

func (c *Context) LinkProgram(p opengl.Program) {
	gl.LinkProgram(uint32(p))
}

func (c *Context) ProgramLinked(p opengl.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (c *Context) ProgramInfoLog(p opengl.Program) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00\n")
}

func (c *Context) DeleteProgram(p opengl.Program) {
	gl.DeleteProgram(uint32(p))
}

func (c *Context) UseProgram(p opengl.Program) {
	gl.UseProgram(uint32(p))
}

func (c *Context) GetUniformBlockIndex(p opengl.Program, name string) uint32 {
	return gl.GetUniformBlockIndex(uint32(p), gl.Str(name+"\x00"))
}

func (c *Context) UniformBlockBinding(p opengl.Program, index, binding uint32) {
	gl.UniformBlockBinding(uint32(p), index, binding)
}

func (c *Context) GetUniformLocation(p opengl.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (c *Context) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (c *Context) CreateVertexArray() opengl.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return opengl.VertexArray(vao)
}

func (c *Context) BindVertexArray(a opengl.VertexArray) {
	gl.BindVertexArray(uint32(a))
}

func (c *Context) DeleteVertexArray(a opengl.VertexArray) {
	vao := uint32(a)
	gl.DeleteVertexArrays(1, &vao)
}

func (c *Context) BindBuffer(target opengl.Enum, b opengl.Buffer) {
	gl.BindBuffer(uint32(target), uint32(b))
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (c *Context) VertexAttribPointer(index uint32, size int32, typ opengl.Enum, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, uint32(typ), normalized, stride, offset)
}

func (c *Context) VertexAttribIPointer(index uint32, size int32, typ opengl.Enum, stride int32, offset uintptr) {
	gl.VertexAttribIPointerWithOffset(index, size, uint32(typ), stride, offset)
}

func (c *Context) VertexAttribDivisor(index, divisor uint32) {
	gl.VertexAttribDivisor(index, divisor)
}

func (c *Context) Enable(cap opengl.Enum) {
	gl.Enable(uint32(cap))
}

func (c *Context) Disable(cap opengl.Enum) {
	gl.Disable(uint32(cap))
}

func (c *Context) CullFace(mode opengl.Enum) {
	gl.CullFace(uint32(mode))
}

func (c *Context) FrontFace(mode opengl.Enum) {
	gl.FrontFace(uint32(mode))
}

func (c *Context) PolygonMode(face, mode opengl.Enum) {
	gl.PolygonMode(uint32(face), uint32(mode))
}

func (c *Context) PolygonOffset(factor, units float32) {
	gl.PolygonOffset(factor, units)
}

func (c *Context) DepthFunc(fn opengl.Enum) {
	gl.DepthFunc(uint32(fn))
}

func (c *Context) DepthMask(write bool) {
	gl.DepthMask(write)
}

func (c *Context) StencilFuncSeparate(face, fn opengl.Enum, ref int32, mask uint32) {
	gl.StencilFuncSeparate(uint32(face), uint32(fn), ref, mask)
}

func (c *Context) StencilOpSeparate(face, fail, depthFail, pass opengl.Enum) {
	gl.StencilOpSeparate(uint32(face), uint32(fail), uint32(depthFail), uint32(pass))
}

func (c *Context) StencilMask(mask uint32) {
	gl.StencilMask(mask)
}

func (c *Context) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha opengl.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

func (c *Context) BlendEquationSeparate(modeRGB, modeAlpha opengl.Enum) {
	gl.BlendEquationSeparate(uint32(modeRGB), uint32(modeAlpha))
}

func (c *Context) ColorMask(r, g, b, a bool) {
	gl.ColorMask(r, g, b, a)
}

func (c *Context) GetError() opengl.Enum {
	return opengl.Enum(gl.GetError())
}
