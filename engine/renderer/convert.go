package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/spaghettifunk/prism/engine/resources"
)

var ErrInvalidValue = errors.New("invalid pipeline value")

var cullModes = map[string]gpu.CullMode{
	"none":           gpu.CullNone,
	"front":          gpu.CullFront,
	"back":           gpu.CullBack,
	"front_and_back": gpu.CullFrontAndBack,
}

var frontFaces = map[string]gpu.FrontFace{
	"ccw":               gpu.FrontFaceCounterClockwise,
	"counter_clockwise": gpu.FrontFaceCounterClockwise,
	"cw":                gpu.FrontFaceClockwise,
	"clockwise":         gpu.FrontFaceClockwise,
}

var fillModes = map[string]gpu.FillMode{
	"fill":  gpu.FillFace,
	"line":  gpu.FillLine,
	"point": gpu.FillPoint,
}

var primitives = map[string]gpu.Primitive{
	"triangles":      gpu.PrimitiveTriangles,
	"triangle_strip": gpu.PrimitiveTriangleStrip,
	"lines":          gpu.PrimitiveLines,
	"line_strip":     gpu.PrimitiveLineStrip,
	"points":         gpu.PrimitivePoints,
}

var compareFuncs = map[string]gpu.ComparisonFunc{
	"never":         gpu.CompareNever,
	"less":          gpu.CompareLess,
	"equal":         gpu.CompareEqual,
	"less_equal":    gpu.CompareLessEqual,
	"greater":       gpu.CompareGreater,
	"not_equal":     gpu.CompareNotEqual,
	"greater_equal": gpu.CompareGreaterEqual,
	"always":        gpu.CompareAlways,
}

var stencilOps = map[string]gpu.StencilOp{
	"keep":     gpu.StencilKeep,
	"zero":     gpu.StencilZero,
	"replace":  gpu.StencilReplace,
	"incr_sat": gpu.StencilIncrSat,
	"decr_sat": gpu.StencilDecrSat,
	"invert":   gpu.StencilInvert,
	"incr":     gpu.StencilIncr,
	"decr":     gpu.StencilDecr,
}

var blendArgs = map[string]gpu.BlendArg{
	"zero":             gpu.BlendZero,
	"one":              gpu.BlendOne,
	"src_color":        gpu.BlendSrcColor,
	"inv_src_color":    gpu.BlendInvSrcColor,
	"src_alpha":        gpu.BlendSrcAlpha,
	"inv_src_alpha":    gpu.BlendInvSrcAlpha,
	"dest_alpha":       gpu.BlendDestAlpha,
	"inv_dest_alpha":   gpu.BlendInvDestAlpha,
	"dest_color":       gpu.BlendDestColor,
	"inv_dest_color":   gpu.BlendInvDestColor,
	"src_alpha_sat":    gpu.BlendSrcAlphaSat,
	"factor_color":     gpu.BlendFactorColor,
	"inv_factor_color": gpu.BlendInvFactorColor,
	"factor_alpha":     gpu.BlendFactorAlpha,
	"inv_factor_alpha": gpu.BlendInvFactorAlpha,
}

var blendOps = map[string]gpu.BlendOp{
	"add":          gpu.BlendOpAdd,
	"subtract":     gpu.BlendOpSubtract,
	"rev_subtract": gpu.BlendOpRevSubtract,
	"min":          gpu.BlendOpMin,
	"max":          gpu.BlendOpMax,
}

var frequencies = map[string]gpu.Frequency{
	"vertex":   gpu.PerVertex,
	"instance": gpu.PerInstance,
}

// lookup returns def for an empty value.
func lookup[T any](field, value string, table map[string]T, def T) (T, error) {
	if value == "" {
		return def, nil
	}
	v, ok := table[strings.ToLower(value)]
	if !ok {
		return def, fmt.Errorf("%w: %s `%s`", ErrInvalidValue, field, value)
	}
	return v, nil
}

// parseColorWrite reads a channel list like "rgb" or "rgba"; "none" masks every channel.
func parseColorWrite(value string) (gpu.ColorMask, error) {
	switch strings.ToLower(value) {
	case "":
		return gpu.WriteAll, nil
	case "none":
		return 0, nil
	}
	var mask gpu.ColorMask
	for _, c := range strings.ToLower(value) {
		switch c {
		case 'r':
			mask |= gpu.WriteRed
		case 'g':
			mask |= gpu.WriteGreen
		case 'b':
			mask |= gpu.WriteBlue
		case 'a':
			mask |= gpu.WriteAlpha
		default:
			return 0, fmt.Errorf("%w: color_write `%s`", ErrInvalidValue, value)
		}
	}
	return mask, nil
}

// buildState applies a description on top of gpu.DefaultState.
func buildState(sc resources.StateConfig) (gpu.State, error) {
	s := gpu.DefaultState()
	var err error
	if s.Cull, err = lookup("cull", sc.Cull, cullModes, s.Cull); err != nil {
		return s, err
	}
	if s.FrontFace, err = lookup("front_face", sc.FrontFace, frontFaces, s.FrontFace); err != nil {
		return s, err
	}
	if s.Fill, err = lookup("fill", sc.Fill, fillModes, s.Fill); err != nil {
		return s, err
	}
	if s.Primitive, err = lookup("primitive", sc.Primitive, primitives, s.Primitive); err != nil {
		return s, err
	}
	if sc.DepthTest != nil {
		s.Depth.Enabled = *sc.DepthTest
	}
	if sc.DepthWrite != nil {
		s.Depth.Write = *sc.DepthWrite
	}
	if s.Depth.Func, err = lookup("depth_func", sc.DepthFunc, compareFuncs, s.Depth.Func); err != nil {
		return s, err
	}
	s.DepthClamp = sc.DepthClamp
	s.Scissor = sc.Scissor
	s.AlphaToCoverage = sc.AlphaToCoverage
	if s.ColorWrite, err = parseColorWrite(sc.ColorWrite); err != nil {
		return s, err
	}
	if sc.DepthBias != nil {
		if !gpu.IsFinite(sc.DepthBias.Factor) || !gpu.IsFinite(sc.DepthBias.Units) {
			return s, fmt.Errorf("%w: depth_bias factor=%v units=%v", ErrInvalidValue, sc.DepthBias.Factor, sc.DepthBias.Units)
		}
		s.DepthBias = gpu.DepthBias{Enabled: true, Factor: sc.DepthBias.Factor, Units: sc.DepthBias.Units}
	}
	if b := sc.Blend; b != nil && b.Enabled {
		if s.Blend, err = buildBlend(b); err != nil {
			return s, err
		}
	}
	if st := sc.Stencil; st != nil && st.Enabled {
		if s.Stencil, err = buildStencil(st, s.Stencil); err != nil {
			return s, err
		}
	}
	return s, nil
}

// buildBlend uses the color factors for alpha unless separate alpha factors are given.
func buildBlend(b *resources.BlendConfig) (gpu.BlendFunction, error) {
	fn := gpu.BlendFunction{Enabled: true}
	var err error
	if fn.SrcColor, err = lookup("blend.src", b.Src, blendArgs, gpu.BlendOne); err != nil {
		return fn, err
	}
	if fn.DestColor, err = lookup("blend.dest", b.Dest, blendArgs, gpu.BlendZero); err != nil {
		return fn, err
	}
	if fn.OpColor, err = lookup("blend.op", b.Op, blendOps, gpu.BlendOpAdd); err != nil {
		return fn, err
	}
	if fn.SrcAlpha, err = lookup("blend.src_alpha", b.SrcAlpha, blendArgs, fn.SrcColor); err != nil {
		return fn, err
	}
	if fn.DestAlpha, err = lookup("blend.dest_alpha", b.DestAlpha, blendArgs, fn.DestColor); err != nil {
		return fn, err
	}
	if fn.OpAlpha, err = lookup("blend.op_alpha", b.OpAlpha, blendOps, fn.OpColor); err != nil {
		return fn, err
	}
	return fn, nil
}

func buildStencil(sc *resources.StencilConfig, def gpu.StencilTest) (gpu.StencilTest, error) {
	st := def
	st.Enabled = true
	if sc.WriteMask != nil {
		st.WriteMask = *sc.WriteMask
	}
	face := def.Front
	face.Ref = sc.Ref
	if sc.ReadMask != nil {
		face.ReadMask = *sc.ReadMask
	}
	var err error
	if face.Func, err = lookup("stencil.func", sc.Func, compareFuncs, face.Func); err != nil {
		return st, err
	}
	if face.Fail, err = lookup("stencil.fail", sc.Fail, stencilOps, face.Fail); err != nil {
		return st, err
	}
	if face.DepthFail, err = lookup("stencil.depth_fail", sc.DepthFail, stencilOps, face.DepthFail); err != nil {
		return st, err
	}
	if face.Pass, err = lookup("stencil.pass", sc.Pass, stencilOps, face.Pass); err != nil {
		return st, err
	}
	st.Front = face
	st.Back = face
	return st, nil
}

// buildFormat returns nil for descriptions without attributes.
func buildFormat(attrs []resources.AttributeConfig) (*gpu.Format, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	list := make([]gpu.Attribute, 0, len(attrs))
	for _, a := range attrs {
		element, err := gpu.ParseElementType(a.Element)
		if err != nil {
			return nil, err
		}
		freq, err := lookup("frequency", a.Frequency, frequencies, gpu.PerVertex)
		if err != nil {
			return nil, err
		}
		list = append(list, gpu.Attribute{
			Slot:      a.Slot,
			Channel:   a.Channel,
			Element:   element,
			Offset:    a.Offset,
			Stride:    a.Stride,
			Frequency: freq,
		})
	}
	return gpu.NewFormat(list...)
}

// stageSlots returns the slots visible to stage. A slot without a stage list is
// visible to every stage.
func stageSlots(slots []resources.SlotConfig, stage gpu.ShaderStage) ([]gpu.Slot, error) {
	var out []gpu.Slot
	for _, sc := range slots {
		kind, err := gpu.ParseSlotKind(sc.Kind)
		if err != nil {
			return nil, fmt.Errorf("slot `%s`: %w", sc.Name, err)
		}
		visible := len(sc.Stages) == 0
		for _, name := range sc.Stages {
			st, err := gpu.ParseShaderStage(name)
			if err != nil {
				return nil, fmt.Errorf("slot `%s`: %w", sc.Name, err)
			}
			if st == stage {
				visible = true
			}
		}
		if visible {
			out = append(out, gpu.Slot{Name: sc.Name, Kind: kind, Binding: sc.Binding})
		}
	}
	return out, nil
}
