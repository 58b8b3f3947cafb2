package opengl

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu"
)

var (
	errCompile = errors.New("shader compilation failed")
	errLink    = errors.New("program linking failed")
)

// compileShader compiles one stage. The returned error is a *gpu.BackendCompilationError
// without the pipeline name.
func compileShader(ctx Context, s *gpu.Shader) (Shader, error) {
	kind, ok := shaderKind(s.Stage())
	if !ok {
		return 0, &gpu.BackendCompilationError{Backend: BackendName, Stage: s.Stage(), Err: gpu.ErrUnsupportedStage}
	}
	src := s.Source().GLSL
	if src == "" {
		return 0, &gpu.BackendCompilationError{
			Backend: BackendName,
			Stage:   s.Stage(),
			Err:     fmt.Errorf("%w: `%s` has no GLSL source", gpu.ErrEmptySource, s.Name()),
		}
	}

	shader := ctx.CreateShader(kind)
	ctx.ShaderSource(shader, src)
	ctx.CompileShader(shader)
	if !ctx.ShaderCompiled(shader) {
		log := ctx.ShaderInfoLog(shader)
		ctx.DeleteShader(shader)
		return 0, &gpu.BackendCompilationError{Backend: BackendName, Stage: s.Stage(), Log: log, Err: errCompile}
	}
	core.LogDebug("compiled %s shader `%s` (%d)", s.Stage(), s.Name(), shader)
	return shader, nil
}

// linkProgram links the compiled stages. The shader objects stay alive and detached.
func linkProgram(ctx Context, shaders []Shader) (Program, error) {
	program := ctx.CreateProgram()
	for _, s := range shaders {
		ctx.AttachShader(program, s)
	}
	ctx.LinkProgram(program)
	for _, s := range shaders {
		ctx.DetachShader(program, s)
	}
	if !ctx.ProgramLinked(program) {
		log := ctx.ProgramInfoLog(program)
		ctx.DeleteProgram(program)
		return 0, &gpu.BackendCompilationError{Backend: BackendName, Stage: gpu.StageProgram, Log: log, Err: errLink}
	}
	return program, nil
}

// bindSlots assigns uniform blocks to their binding points and samplers to their
// texture units. Storage buffers rely on the binding qualifier in the source.
func bindSlots(ctx Context, program Program, slots []gpu.Slot) {
	used := false
	for _, slot := range slots {
		switch slot.Kind {
		case gpu.SlotUniformBuffer:
			idx := ctx.GetUniformBlockIndex(program, slot.Name)
			if idx == InvalidIndex {
				core.LogWarn("uniform block `%s` not found in program %d", slot.Name, program)
				continue
			}
			ctx.UniformBlockBinding(program, idx, slot.Binding)
		case gpu.SlotTexture, gpu.SlotSampler:
			loc := ctx.GetUniformLocation(program, slot.Name)
			if loc < 0 {
				core.LogWarn("sampler `%s` not found in program %d", slot.Name, program)
				continue
			}
			if !used {
				ctx.UseProgram(program)
				used = true
			}
			ctx.Uniform1i(loc, int32(slot.Binding))
		}
	}
	if used {
		ctx.UseProgram(0)
	}
}
