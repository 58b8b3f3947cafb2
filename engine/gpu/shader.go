package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

/** @brief Shader stages available in the system. */
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageGeometry
	StageCompute
	/** @brief A linked set of stage shaders. */
	StageProgram
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	case StageCompute:
		return "compute"
	case StageProgram:
		return "program"
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// ParseShaderStage accepts the stage names used in pipeline description files.
func ParseShaderStage(s string) (ShaderStage, error) {
	switch strings.ToLower(s) {
	case "vertex", "vert":
		return StageVertex, nil
	case "fragment", "frag", "pixel":
		return StageFragment, nil
	case "geometry", "geom":
		return StageGeometry, nil
	case "compute", "comp":
		return StageCompute, nil
	}
	return 0, fmt.Errorf("unknown shader stage `%s`", s)
}

/** @brief Bit set of shader stages a slot is visible to. */
type StageMask uint8

func (m StageMask) Has(s ShaderStage) bool {
	return m&StageMask(1<<s) != 0
}

func MaskOf(stages ...ShaderStage) StageMask {
	var m StageMask
	for _, s := range stages {
		m |= StageMask(1 << s)
	}
	return m
}

/** @brief Kind of resource bound to a slot. */
type SlotKind uint8

const (
	SlotUniformBuffer SlotKind = iota
	SlotTexture
	SlotSampler
	SlotStorageBuffer
)

func (k SlotKind) String() string {
	switch k {
	case SlotUniformBuffer:
		return "uniform_buffer"
	case SlotTexture:
		return "texture"
	case SlotSampler:
		return "sampler"
	case SlotStorageBuffer:
		return "storage_buffer"
	}
	return fmt.Sprintf("slot(%d)", uint8(k))
}

func ParseSlotKind(s string) (SlotKind, error) {
	switch strings.ToLower(s) {
	case "uniform_buffer", "uniform", "ubo":
		return SlotUniformBuffer, nil
	case "texture":
		return SlotTexture, nil
	case "sampler":
		return SlotSampler, nil
	case "storage_buffer", "storage", "ssbo":
		return SlotStorageBuffer, nil
	}
	return 0, fmt.Errorf("unknown slot kind `%s`", s)
}

/**
 * @brief A reflected resource binding of a shader.
 */
type Slot struct {
	/** @brief The name of the resource in the shader source. */
	Name string
	/** @brief The resource kind. */
	Kind SlotKind
	/** @brief The binding index (descriptor binding in set 0, GL binding point or texture unit). */
	Binding uint32
	/** @brief Stages which access the slot. Filled in from the owning shader when zero. */
	Stages StageMask
}

/**
 * @brief Source code and/or bytecode for a single stage.
 */
type Source struct {
	/** @brief GLSL text, consumed by the OpenGL backend. */
	GLSL string
	/** @brief SPIR-V bytecode, consumed by the Vulkan backend. */
	SPIRV []byte
	/** @brief Entry point name, "main" when empty. */
	EntryPoint string
}

func (s Source) IsEmpty() bool {
	return s.GLSL == "" && len(s.SPIRV) == 0
}

// ShaderID identifies a shader by content or by an explicit id.
type ShaderID = uuid.UUID

var shaderNamespace = uuid.MustParse("5f0b7a51-3c1e-4f7e-9a0c-2d61f3c1b7e4")

/**
 * @brief Represents a shader stage or a linked program. Immutable once constructed.
 */
type Shader struct {
	id     ShaderID
	name   string
	stage  ShaderStage
	source Source
	slots  []Slot
	stages []*Shader
}

type ShaderOption func(*Shader)

func WithShaderName(name string) ShaderOption {
	return func(s *Shader) {
		s.name = name
	}
}

// WithShaderID overrides the content-derived identity.
func WithShaderID(id ShaderID) ShaderOption {
	return func(s *Shader) {
		s.id = id
	}
}

func WithSlots(slots ...Slot) ShaderOption {
	return func(s *Shader) {
		s.slots = append(s.slots, slots...)
	}
}

// NewShader creates a single stage shader.
func NewShader(stage ShaderStage, source Source, opts ...ShaderOption) (*Shader, error) {
	if stage == StageProgram {
		return nil, fmt.Errorf("%w: use NewProgram to link stages", ErrStageConflict)
	}
	if source.IsEmpty() {
		return nil, ErrEmptySource
	}
	if source.EntryPoint == "" {
		source.EntryPoint = "main"
	}
	source.SPIRV = bytes.Clone(source.SPIRV)

	s := &Shader{
		stage:  stage,
		source: source,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.slots {
		if s.slots[i].Stages == 0 {
			s.slots[i].Stages = MaskOf(stage)
		}
	}
	sortSlots(s.slots)
	if err := checkSlots(s.slots); err != nil {
		return nil, err
	}
	if s.id == uuid.Nil {
		s.id = uuid.NewSHA1(shaderNamespace, s.contentKey())
	}
	if s.name == "" {
		s.name = fmt.Sprintf("%s-%s", stage, s.id.String()[:8])
	}
	return s, nil
}

// NewProgram links stage shaders into a program. A program holds either one compute
// stage, or a vertex stage with optional geometry and fragment stages.
func NewProgram(name string, stages ...*Shader) (*Shader, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: program `%s` has no stages", ErrStageConflict, name)
	}
	seen := map[ShaderStage]bool{}
	for _, st := range stages {
		if st == nil {
			return nil, fmt.Errorf("%w: program `%s` has a nil stage", ErrStageConflict, name)
		}
		if st.stage == StageProgram {
			return nil, fmt.Errorf("%w: program `%s` cannot nest programs", ErrStageConflict, name)
		}
		if seen[st.stage] {
			return nil, fmt.Errorf("%w: program `%s` has two %s stages", ErrStageConflict, name, st.stage)
		}
		seen[st.stage] = true
	}
	if seen[StageCompute] && len(stages) > 1 {
		return nil, fmt.Errorf("%w: program `%s` mixes compute and graphics stages", ErrStageConflict, name)
	}
	if !seen[StageCompute] && !seen[StageVertex] {
		return nil, fmt.Errorf("%w: program `%s` has no vertex stage", ErrStageConflict, name)
	}

	ordered := append([]*Shader(nil), stages...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].stage < ordered[j].stage })

	slots, err := mergeSlots(ordered)
	if err != nil {
		return nil, fmt.Errorf("program `%s`: %w", name, err)
	}

	p := &Shader{
		name:   name,
		stage:  StageProgram,
		slots:  slots,
		stages: ordered,
	}
	p.id = uuid.NewSHA1(shaderNamespace, p.contentKey())
	if p.name == "" {
		p.name = "program-" + p.id.String()[:8]
	}
	return p, nil
}

func (s *Shader) ID() ShaderID       { return s.id }
func (s *Shader) Name() string       { return s.name }
func (s *Shader) Stage() ShaderStage { return s.stage }
func (s *Shader) Source() Source     { return s.source }
func (s *Shader) IsProgram() bool    { return s.stage == StageProgram }
func (s *Shader) Slots() []Slot      { return append([]Slot(nil), s.slots...) }
func (s *Shader) Stages() []*Shader  { return append([]*Shader(nil), s.stages...) }
func (s *Shader) EntryPoint() string { return s.source.EntryPoint }

// IsCompute reports whether the shader is a compute stage or a compute program.
func (s *Shader) IsCompute() bool {
	if s.stage == StageCompute {
		return true
	}
	return s.stage == StageProgram && len(s.stages) == 1 && s.stages[0].stage == StageCompute
}

// StageShader returns the stage of a program, or the shader itself when it is that stage.
func (s *Shader) StageShader(stage ShaderStage) *Shader {
	if s.stage == stage {
		return s
	}
	for _, st := range s.stages {
		if st.stage == stage {
			return st
		}
	}
	return nil
}

// ProgramStages returns the stages of a program, or the shader itself for a lone stage.
func (s *Shader) ProgramStages() []*Shader {
	if s.stage == StageProgram {
		return s.Stages()
	}
	return []*Shader{s}
}

func (s *Shader) contentKey() []byte {
	var b bytes.Buffer
	b.WriteByte(byte(s.stage))
	if s.stage == StageProgram {
		for _, st := range s.stages {
			b.Write(st.id[:])
		}
		return b.Bytes()
	}
	writeString(&b, s.source.GLSL)
	writeString(&b, s.source.EntryPoint)
	_ = binary.Write(&b, binary.LittleEndian, uint64(len(s.source.SPIRV)))
	b.Write(s.source.SPIRV)
	for _, sl := range s.slots {
		writeString(&b, sl.Name)
		b.WriteByte(byte(sl.Kind))
		_ = binary.Write(&b, binary.LittleEndian, sl.Binding)
		b.WriteByte(byte(sl.Stages))
	}
	return b.Bytes()
}

func writeString(b *bytes.Buffer, s string) {
	_ = binary.Write(b, binary.LittleEndian, uint64(len(s)))
	b.WriteString(s)
}

func sortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Binding < slots[j].Binding })
}

// checkSlots expects slots sorted by binding.
func checkSlots(slots []Slot) error {
	for i := 1; i < len(slots); i++ {
		if slots[i].Binding == slots[i-1].Binding {
			return fmt.Errorf("%w: `%s` and `%s` share binding %d", ErrSlotConflict, slots[i-1].Name, slots[i].Name, slots[i].Binding)
		}
	}
	return nil
}

// mergeSlots folds the slots of all stages; a binding used by several stages must
// agree on name and kind, its stage mask is the union.
func mergeSlots(stages []*Shader) ([]Slot, error) {
	byBinding := map[uint32]int{}
	var out []Slot
	for _, st := range stages {
		for _, sl := range st.slots {
			i, ok := byBinding[sl.Binding]
			if !ok {
				byBinding[sl.Binding] = len(out)
				out = append(out, sl)
				continue
			}
			if out[i].Name != sl.Name || out[i].Kind != sl.Kind {
				return nil, fmt.Errorf("%w: binding %d is `%s` (%s) in one stage and `%s` (%s) in %s",
					ErrSlotConflict, sl.Binding, out[i].Name, out[i].Kind, sl.Name, sl.Kind, st.stage)
			}
			out[i].Stages |= sl.Stages
		}
	}
	sortSlots(out)
	return out, nil
}
