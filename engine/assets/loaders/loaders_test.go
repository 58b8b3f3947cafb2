package loaders

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineLoader(t *testing.T) {
	data := []byte(`
[[stages]]
stage = "vertex"
spirv = "shaders/mesh.vert.spv"

[[stages]]
stage = "fragment"
spirv = "shaders/mesh.frag.spv"
entry_point = "fs_main"

[[slots]]
name = "Camera"
kind = "uniform_buffer"
binding = 0
stages = ["vertex"]

[state]
cull = "none"
depth_write = false

[state.blend]
enabled = true
src = "src_alpha"
dest = "one_minus_src_alpha"

[[attributes]]
slot = 0
element = "float32x3"
stride = 20

[[attributes]]
slot = 1
element = "float32x2"
offset = 12
stride = 20
`)
	res, err := (&PipelineLoader{}).Load("pipelines/mesh.pipeline.toml", data, nil)
	require.NoError(t, err)
	assert.Equal(t, "mesh", res.Name)
	assert.Equal(t, resources.ResourceTypePipeline, res.Type)

	cfg := res.Data.(*resources.PipelineConfig)
	assert.Equal(t, "main", cfg.Stages[0].EntryPoint)
	assert.Equal(t, "fs_main", cfg.Stages[1].EntryPoint)
	require.Len(t, cfg.Slots, 1)
	assert.Equal(t, []string{"vertex"}, cfg.Slots[0].Stages)
	require.NotNil(t, cfg.State.DepthWrite)
	assert.False(t, *cfg.State.DepthWrite)
	assert.Nil(t, cfg.State.DepthTest)
	require.NotNil(t, cfg.State.Blend)
	assert.Equal(t, "src_alpha", cfg.State.Blend.Src)
	assert.Len(t, cfg.Attributes, 2)
	assert.Equal(t, []string{"shaders/mesh.vert.spv", "shaders/mesh.frag.spv"}, cfg.Files())

	require.NoError(t, (&PipelineLoader{}).Unload(res))
	assert.Nil(t, res.Data)
}

func TestPipelineLoaderErrors(t *testing.T) {
	cases := map[string]string{
		"syntax":    "name = ",
		"no stages": `name = "x"`,
		"no kind":   "[[stages]]\nglsl = \"a.vert\"",
		"no source": "[[stages]]\nstage = \"vertex\"",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&PipelineLoader{}).Load("x.pipeline.toml", []byte(data), nil)
			assert.ErrorIs(t, err, ErrInvalidPipeline)
		})
	}
}

func TestShaderAndBinaryLoader(t *testing.T) {
	res, err := (&ShaderLoader{}).Load("shaders/a.frag", []byte("void main() {}"), map[string]string{"name": "albedo"})
	require.NoError(t, err)
	assert.Equal(t, "albedo", res.Name)
	assert.Equal(t, "void main() {}", res.Data)

	_, err = (&ShaderLoader{}).Load("shaders/a.frag", []byte("  \n"), nil)
	assert.ErrorIs(t, err, ErrEmptyShaderSource)

	src := []byte{1, 2, 3, 4}
	res, err = (&BinaryLoader{}).Load("blob.bin", src, nil)
	require.NoError(t, err)
	assert.Equal(t, resources.ResourceTypeBinary, res.Type)
	assert.Equal(t, "blob", res.Name)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3, 4}, res.Data)

	assert.Error(t, (&BinaryLoader{}).Unload(nil))
}
