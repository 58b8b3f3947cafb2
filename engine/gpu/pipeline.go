package gpu

import (
	"fmt"
	"sync/atomic"
)

// PipelineID is unique for the lifetime of the process and never reused.
type PipelineID uint64

var lastPipelineID atomic.Uint64

// noCopy makes go vet flag accidental copies of a Pipeline.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

/**
 * @brief Immutable description of how to draw: a shader program, the fixed-function
 * state and the optional vertex format.
 *
 * Pipelines are shared by pointer. The native realization of a pipeline is owned by
 * each backend's cache and lives as long as the Pipeline is reachable.
 */
type Pipeline struct {
	_ noCopy

	id      PipelineID
	name    string
	program *Shader
	state   *State
	format  *Format
}

type PipelineOption func(*Pipeline)

func WithPipelineName(name string) PipelineOption {
	return func(p *Pipeline) {
		p.name = name
	}
}

// NewPipeline binds a program, a state and an optional format. A nil state selects
// a fresh DefaultState. The program must be a linked program or a compute shader.
func NewPipeline(program *Shader, state *State, format *Format, opts ...PipelineOption) (*Pipeline, error) {
	if program == nil {
		return nil, ErrNilProgram
	}
	if !program.IsProgram() && program.Stage() != StageCompute {
		return nil, fmt.Errorf("%w: `%s` is a %s shader", ErrNotProgram, program.Name(), program.Stage())
	}
	if state == nil {
		s := DefaultState()
		state = &s
	}
	p := &Pipeline{
		id:      PipelineID(lastPipelineID.Add(1)),
		program: program,
		state:   state,
		format:  format,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.name == "" {
		p.name = fmt.Sprintf("%s#%d", program.Name(), p.id)
	}
	return p, nil
}

func (p *Pipeline) ID() PipelineID {
	return p.id
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) Program() *Shader {
	return p.program
}

func (p *Pipeline) State() *State {
	return p.state
}

// Format returns nil when the pipeline pulls no vertex attributes.
func (p *Pipeline) Format() *Format {
	return p.format
}

func (p *Pipeline) IsCompute() bool {
	return p.program.IsCompute()
}
