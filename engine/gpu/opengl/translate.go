package opengl

import (
	"github.com/spaghettifunk/prism/engine/gpu"
)

// stateFields are the fields realized by GL state commands. The primitive is a draw argument.
const stateFields = gpu.FieldCull | gpu.FieldFrontFace | gpu.FieldFill | gpu.FieldDepthClamp |
	gpu.FieldScissor | gpu.FieldMultisample | gpu.FieldAlphaToCoverage | gpu.FieldDepth |
	gpu.FieldDepthBias | gpu.FieldStencil | gpu.FieldBlend | gpu.FieldColorWrite

func shaderKind(stage gpu.ShaderStage) (Enum, bool) {
	switch stage {
	case gpu.StageVertex:
		return VERTEX_SHADER, true
	case gpu.StageFragment:
		return FRAGMENT_SHADER, true
	case gpu.StageGeometry:
		return GEOMETRY_SHADER, true
	case gpu.StageCompute:
		return COMPUTE_SHADER, true
	}
	return 0, false
}

func primitiveMode(p gpu.Primitive) Enum {
	switch p {
	case gpu.PrimitiveTriangleStrip:
		return TRIANGLE_STRIP
	case gpu.PrimitiveLines:
		return LINES
	case gpu.PrimitiveLineStrip:
		return LINE_STRIP
	case gpu.PrimitivePoints:
		return POINTS
	}
	return TRIANGLES
}

func compareFunc(f gpu.ComparisonFunc) Enum {
	return NEVER + Enum(f)
}

func stencilOp(op gpu.StencilOp) Enum {
	switch op {
	case gpu.StencilZero:
		return ZERO
	case gpu.StencilReplace:
		return REPLACE
	case gpu.StencilIncrSat:
		return INCR
	case gpu.StencilDecrSat:
		return DECR
	case gpu.StencilInvert:
		return INVERT
	case gpu.StencilIncr:
		return INCR_WRAP
	case gpu.StencilDecr:
		return DECR_WRAP
	}
	return KEEP
}

var blendFactors = [...]Enum{
	gpu.BlendZero:           ZERO,
	gpu.BlendOne:            ONE,
	gpu.BlendSrcColor:       SRC_COLOR,
	gpu.BlendInvSrcColor:    ONE_MINUS_SRC_COLOR,
	gpu.BlendSrcAlpha:       SRC_ALPHA,
	gpu.BlendInvSrcAlpha:    ONE_MINUS_SRC_ALPHA,
	gpu.BlendDestAlpha:      DST_ALPHA,
	gpu.BlendInvDestAlpha:   ONE_MINUS_DST_ALPHA,
	gpu.BlendDestColor:      DST_COLOR,
	gpu.BlendInvDestColor:   ONE_MINUS_DST_COLOR,
	gpu.BlendSrcAlphaSat:    SRC_ALPHA_SATURATE,
	gpu.BlendFactorColor:    CONSTANT_COLOR,
	gpu.BlendInvFactorColor: ONE_MINUS_CONSTANT_COLOR,
	gpu.BlendFactorAlpha:    CONSTANT_ALPHA,
	gpu.BlendInvFactorAlpha: ONE_MINUS_CONSTANT_ALPHA,
}

func blendFactor(a gpu.BlendArg) Enum {
	if int(a) < len(blendFactors) {
		return blendFactors[a]
	}
	return ONE
}

func blendEquation(op gpu.BlendOp) Enum {
	switch op {
	case gpu.BlendOpSubtract:
		return FUNC_SUBTRACT
	case gpu.BlendOpRevSubtract:
		return FUNC_REVERSE_SUBTRACT
	case gpu.BlendOpMin:
		return MIN
	case gpu.BlendOpMax:
		return MAX
	}
	return FUNC_ADD
}

func cullFace(m gpu.CullMode) Enum {
	switch m {
	case gpu.CullFront:
		return FRONT
	case gpu.CullFrontAndBack:
		return FRONT_AND_BACK
	}
	return BACK
}

func polygonMode(m gpu.FillMode) Enum {
	switch m {
	case gpu.FillLine:
		return LINE
	case gpu.FillPoint:
		return POINT
	}
	return FILL
}

// polygonOffsetCap is the capability enabling depth bias for the rasterization mode m.
func polygonOffsetCap(m gpu.FillMode) Enum {
	switch m {
	case gpu.FillLine:
		return POLYGON_OFFSET_LINE
	case gpu.FillPoint:
		return POLYGON_OFFSET_POINT
	}
	return POLYGON_OFFSET_FILL
}

// vertexInput is one glVertexAttribPointer call.
type vertexInput struct {
	index      uint32
	channel    uint32
	size       int32
	typ        Enum
	normalized bool
	integer    bool
	stride     int32
	offset     uintptr
	divisor    uint32
}

func elementType(e gpu.ElementType) (typ Enum, normalized, integer bool) {
	switch e {
	case gpu.ElementFloat16x2, gpu.ElementFloat16x4:
		return HALF_FLOAT, false, false
	case gpu.ElementUint8x4:
		return UNSIGNED_BYTE, false, true
	case gpu.ElementUint8x4Norm:
		return UNSIGNED_BYTE, true, false
	case gpu.ElementInt8x4Norm:
		return BYTE, true, false
	case gpu.ElementUint16x2:
		return UNSIGNED_SHORT, false, true
	case gpu.ElementInt16x2Norm:
		return SHORT, true, false
	case gpu.ElementUint32, gpu.ElementUint32x4:
		return UNSIGNED_INT, false, true
	case gpu.ElementInt32:
		return INT, false, true
	}
	return FLOAT, false, false
}

// vertexLayout flattens a format into attribute pointer calls. A nil format pulls no vertices.
func vertexLayout(f *gpu.Format) []vertexInput {
	if f == nil {
		return nil
	}
	attrs := f.Attributes()
	inputs := make([]vertexInput, 0, len(attrs))
	for _, a := range attrs {
		typ, norm, integer := elementType(a.Element)
		in := vertexInput{
			index:      a.Slot,
			channel:    a.Channel,
			size:       a.Element.Components(),
			typ:        typ,
			normalized: norm,
			integer:    integer,
			stride:     int32(f.Stride(a.Channel)),
			offset:     uintptr(a.Offset),
		}
		if ch, ok := f.Channel(a.Channel); ok && ch.Frequency == gpu.PerInstance {
			in.divisor = 1
		}
		inputs = append(inputs, in)
	}
	return inputs
}

type stateCommand func(ctx Context)

func enable(c Enum, on bool) stateCommand {
	if on {
		return func(ctx Context) { ctx.Enable(c) }
	}
	return func(ctx Context) { ctx.Disable(c) }
}

// stateCommands compiles the GL calls setting the given fields of s.
func stateCommands(s gpu.State, fields gpu.StateField) []stateCommand {
	var cmds []stateCommand
	if fields.Has(gpu.FieldCull) {
		cmds = append(cmds, enable(CULL_FACE, s.Cull != gpu.CullNone))
		if s.Cull != gpu.CullNone {
			mode := cullFace(s.Cull)
			cmds = append(cmds, func(ctx Context) { ctx.CullFace(mode) })
		}
	}
	if fields.Has(gpu.FieldFrontFace) {
		mode := CCW
		if s.FrontFace == gpu.FrontFaceClockwise {
			mode = CW
		}
		cmds = append(cmds, func(ctx Context) { ctx.FrontFace(mode) })
	}
	if fields.Has(gpu.FieldFill) {
		mode := polygonMode(s.Fill)
		cmds = append(cmds, func(ctx Context) { ctx.PolygonMode(FRONT_AND_BACK, mode) })
	}
	if fields.Has(gpu.FieldDepthClamp) {
		cmds = append(cmds, enable(DEPTH_CLAMP, s.DepthClamp))
	}
	if fields.Has(gpu.FieldScissor) {
		cmds = append(cmds, enable(SCISSOR_TEST, s.Scissor))
	}
	if fields.Has(gpu.FieldMultisample) {
		cmds = append(cmds, enable(MULTISAMPLE, s.Multisample))
	}
	if fields.Has(gpu.FieldAlphaToCoverage) {
		cmds = append(cmds, enable(SAMPLE_ALPHA_TO_COVERAGE, s.AlphaToCoverage))
	}
	if fields.Has(gpu.FieldDepth) {
		d := s.Depth
		cmds = append(cmds, enable(DEPTH_TEST, d.Enabled))
		fn := compareFunc(d.Func)
		cmds = append(cmds, func(ctx Context) {
			ctx.DepthFunc(fn)
			ctx.DepthMask(d.Write)
		})
	}
	if fields.Has(gpu.FieldDepthBias) {
		b := s.DepthBias
		on := polygonOffsetCap(s.Fill)
		for _, c := range [...]Enum{POLYGON_OFFSET_FILL, POLYGON_OFFSET_LINE, POLYGON_OFFSET_POINT} {
			cmds = append(cmds, enable(c, b.Enabled && c == on))
		}
		if b.Enabled {
			cmds = append(cmds, func(ctx Context) { ctx.PolygonOffset(b.Factor, b.Units) })
		}
	}
	if fields.Has(gpu.FieldStencil) {
		st := s.Stencil
		cmds = append(cmds, enable(STENCIL_TEST, st.Enabled))
		cmds = append(cmds, func(ctx Context) {
			for _, f := range [...]struct {
				face Enum
				s    gpu.StencilFace
			}{{FRONT, st.Front}, {BACK, st.Back}} {
				ctx.StencilFuncSeparate(f.face, compareFunc(f.s.Func), int32(f.s.Ref), uint32(f.s.ReadMask))
				ctx.StencilOpSeparate(f.face, stencilOp(f.s.Fail), stencilOp(f.s.DepthFail), stencilOp(f.s.Pass))
			}
			ctx.StencilMask(uint32(st.WriteMask))
		})
	}
	if fields.Has(gpu.FieldBlend) {
		bl := s.Blend
		cmds = append(cmds, enable(BLEND, bl.Enabled))
		if bl.Enabled {
			cmds = append(cmds, func(ctx Context) {
				ctx.BlendFuncSeparate(blendFactor(bl.SrcColor), blendFactor(bl.DestColor), blendFactor(bl.SrcAlpha), blendFactor(bl.DestAlpha))
				ctx.BlendEquationSeparate(blendEquation(bl.OpColor), blendEquation(bl.OpAlpha))
			})
		}
	}
	if fields.Has(gpu.FieldColorWrite) {
		m := s.ColorWrite
		cmds = append(cmds, func(ctx Context) {
			ctx.ColorMask(m&gpu.WriteRed != 0, m&gpu.WriteGreen != 0, m&gpu.WriteBlue != 0, m&gpu.WriteAlpha != 0)
		})
	}
	return cmds
}
