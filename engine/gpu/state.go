package gpu

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

/** @brief Determines face culling mode during rendering. */
type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
	CullFrontAndBack
)

type FrontFace uint8

const (
	FrontFaceCounterClockwise FrontFace = iota
	FrontFaceClockwise
)

type FillMode uint8

const (
	FillFace FillMode = iota
	FillLine
	FillPoint
)

/** @brief Primitive topology assembled from the vertex stream. */
type Primitive uint8

const (
	PrimitiveTriangles Primitive = iota
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitiveLineStrip
	PrimitivePoints
)

type ComparisonFunc uint8

const (
	CompareNever ComparisonFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrSat
	StencilDecrSat
	StencilInvert
	StencilIncr
	StencilDecr
)

type BlendArg uint8

const (
	BlendZero BlendArg = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
	BlendSrcAlphaSat
	BlendFactorColor
	BlendInvFactorColor
	BlendFactorAlpha
	BlendInvFactorAlpha
)

type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

type ColorMask uint8

const (
	WriteRed   ColorMask = 0x1
	WriteGreen ColorMask = 0x2
	WriteBlue  ColorMask = 0x4
	WriteAlpha ColorMask = 0x8
	WriteAll   ColorMask = WriteRed | WriteGreen | WriteBlue | WriteAlpha
)

type DepthTest struct {
	Enabled bool
	Write   bool
	Func    ComparisonFunc
}

type DepthBias struct {
	Enabled bool
	Factor  float32
	Units   float32
}

type StencilFace struct {
	Func      ComparisonFunc
	Ref       uint8
	ReadMask  uint8
	Fail      StencilOp
	DepthFail StencilOp
	Pass      StencilOp
}

type StencilTest struct {
	Enabled   bool
	WriteMask uint8
	Front     StencilFace
	Back      StencilFace
}

type BlendFunction struct {
	Enabled   bool
	SrcColor  BlendArg
	DestColor BlendArg
	OpColor   BlendOp
	SrcAlpha  BlendArg
	DestAlpha BlendArg
	OpAlpha   BlendOp
}

/**
 * @brief The complete fixed-function configuration of a pipeline.
 *
 * State is a comparable value: two States with identical fields are equal (==)
 * and hash to the same value. Every field is fixed size so the whole struct can
 * be hashed with encoding/binary.
 */
type State struct {
	Cull            CullMode
	FrontFace       FrontFace
	Fill            FillMode
	Primitive       Primitive
	DepthClamp      bool
	Scissor         bool
	Multisample     bool
	AlphaToCoverage bool
	Depth           DepthTest
	DepthBias       DepthBias
	Stencil         StencilTest
	Blend           BlendFunction
	ColorWrite      ColorMask
}

var defaultStencilFace = StencilFace{
	Func:      CompareAlways,
	ReadMask:  0xFF,
	Fail:      StencilKeep,
	DepthFail: StencilKeep,
	Pass:      StencilKeep,
}

func DefaultState() State {
	return State{
		Cull:        CullBack,
		FrontFace:   FrontFaceCounterClockwise,
		Fill:        FillFace,
		Primitive:   PrimitiveTriangles,
		Multisample: true,
		Depth: DepthTest{
			Enabled: true,
			Write:   true,
			Func:    CompareLess,
		},
		Stencil: StencilTest{
			WriteMask: 0xFF,
			Front:     defaultStencilFace,
			Back:      defaultStencilFace,
		},
		Blend: BlendFunction{
			SrcColor:  BlendOne,
			DestColor: BlendZero,
			OpColor:   BlendOpAdd,
			SrcAlpha:  BlendOne,
			DestAlpha: BlendZero,
			OpAlpha:   BlendOpAdd,
		},
		ColorWrite: WriteAll,
	}
}

type StateOption func(*State)

// NewState returns DefaultState with the options applied.
func NewState(opts ...StateOption) State {
	s := DefaultState()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithCullMode(mode CullMode) StateOption {
	return func(s *State) { s.Cull = mode }
}

func WithFrontFace(face FrontFace) StateOption {
	return func(s *State) { s.FrontFace = face }
}

func WithFillMode(mode FillMode) StateOption {
	return func(s *State) { s.Fill = mode }
}

func WithPrimitive(p Primitive) StateOption {
	return func(s *State) { s.Primitive = p }
}

func WithDepthTest(enabled, write bool, fn ComparisonFunc) StateOption {
	return func(s *State) { s.Depth = DepthTest{Enabled: enabled, Write: write, Func: fn} }
}

// WithDepthBias enables depth bias. Non-finite values leave the state unchanged.
func WithDepthBias(factor, units float32) StateOption {
	return func(s *State) {
		if !IsFinite(factor) || !IsFinite(units) {
			return
		}
		s.DepthBias = DepthBias{Enabled: true, Factor: factor, Units: units}
	}
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func WithDepthClamp(enabled bool) StateOption {
	return func(s *State) { s.DepthClamp = enabled }
}

func WithScissor(enabled bool) StateOption {
	return func(s *State) { s.Scissor = enabled }
}

func WithAlphaToCoverage(enabled bool) StateOption {
	return func(s *State) { s.AlphaToCoverage = enabled }
}

// WithStencil enables the stencil test with the same configuration on both faces.
func WithStencil(face StencilFace, writeMask uint8) StateOption {
	return func(s *State) {
		s.Stencil = StencilTest{Enabled: true, WriteMask: writeMask, Front: face, Back: face}
	}
}

func WithStencilFaces(front, back StencilFace, writeMask uint8) StateOption {
	return func(s *State) {
		s.Stencil = StencilTest{Enabled: true, WriteMask: writeMask, Front: front, Back: back}
	}
}

// WithBlend enables blending with the same factors for color and alpha.
func WithBlend(src, dest BlendArg, op BlendOp) StateOption {
	return func(s *State) {
		s.Blend = BlendFunction{
			Enabled:   true,
			SrcColor:  src,
			DestColor: dest,
			OpColor:   op,
			SrcAlpha:  src,
			DestAlpha: dest,
			OpAlpha:   op,
		}
	}
}

func WithBlendSeparate(fn BlendFunction) StateOption {
	return func(s *State) {
		fn.Enabled = true
		s.Blend = fn
	}
}

func WithColorWrite(mask ColorMask) StateOption {
	return func(s *State) { s.ColorWrite = mask }
}

// Hash returns a 64 bit FNV-1a hash of the state content.
func (s State) Hash() uint64 {
	// -0 == +0, so both must hash alike.
	if s.DepthBias.Factor == 0 {
		s.DepthBias.Factor = 0
	}
	if s.DepthBias.Units == 0 {
		s.DepthBias.Units = 0
	}
	h := fnv.New64a()
	_ = binary.Write(h, binary.LittleEndian, s) // all fields are fixed size
	return h.Sum64()
}

/** @brief Bit set naming the State fields. */
type StateField uint16

const (
	FieldCull StateField = 1 << iota
	FieldFrontFace
	FieldFill
	FieldPrimitive
	FieldDepthClamp
	FieldScissor
	FieldMultisample
	FieldAlphaToCoverage
	FieldDepth
	FieldDepthBias
	FieldStencil
	FieldBlend
	FieldColorWrite
)

func (f StateField) Has(field StateField) bool {
	return f&field != 0
}

// Signature reports which fields differ from DefaultState.
func (s State) Signature() StateField {
	d := DefaultState()
	var sig StateField
	if s.Cull != d.Cull {
		sig |= FieldCull
	}
	if s.FrontFace != d.FrontFace {
		sig |= FieldFrontFace
	}
	if s.Fill != d.Fill {
		sig |= FieldFill
	}
	if s.Primitive != d.Primitive {
		sig |= FieldPrimitive
	}
	if s.DepthClamp != d.DepthClamp {
		sig |= FieldDepthClamp
	}
	if s.Scissor != d.Scissor {
		sig |= FieldScissor
	}
	if s.Multisample != d.Multisample {
		sig |= FieldMultisample
	}
	if s.AlphaToCoverage != d.AlphaToCoverage {
		sig |= FieldAlphaToCoverage
	}
	if s.Depth != d.Depth {
		sig |= FieldDepth
	}
	if s.DepthBias != d.DepthBias {
		sig |= FieldDepthBias
	}
	if s.Stencil != d.Stencil {
		sig |= FieldStencil
	}
	if s.Blend != d.Blend {
		sig |= FieldBlend
	}
	if s.ColorWrite != d.ColorWrite {
		sig |= FieldColorWrite
	}
	return sig
}
