package gpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testVertexGLSL = `#version 410 core
layout (location = 0) in vec3 aPos;
void main() { gl_Position = vec4(aPos, 1.0); }
`

const testFragmentGLSL = `#version 410 core
out vec4 FragColor;
void main() { FragColor = vec4(1.0); }
`

func newTestProgram(t *testing.T) *Shader {
	t.Helper()
	vs, err := NewShader(StageVertex, Source{GLSL: testVertexGLSL},
		WithSlots(Slot{Name: "Camera", Kind: SlotUniformBuffer, Binding: 0}))
	require.NoError(t, err)
	fs, err := NewShader(StageFragment, Source{GLSL: testFragmentGLSL},
		WithSlots(
			Slot{Name: "Camera", Kind: SlotUniformBuffer, Binding: 0},
			Slot{Name: "albedo", Kind: SlotTexture, Binding: 1},
		))
	require.NoError(t, err)
	program, err := NewProgram("unlit", vs, fs)
	require.NoError(t, err)
	return program
}
