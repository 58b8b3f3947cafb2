package vulkan

import (
	"encoding/binary"
	"io/fs"
	"testing"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShaderModule(t *testing.T) {
	dev := newFakeDevice()
	store := assets.MemoryFS{"shaders/sprite.vert.spv": spirv(0x00010000, 42)}

	m, err := LoadShaderModule(dev, store, "shaders/sprite.vert.spv")
	require.NoError(t, err)
	assert.True(t, m.IsValid())
	assert.Equal(t, []uint32{spirvMagic, 0x00010000, 0, 1, 0, 42}, dev.modules[m])
}

func TestLoadShaderModuleBigEndian(t *testing.T) {
	words := []uint32{spirvMagic, 0x00010000, 0, 1, 0, 42}
	var data []byte
	for _, w := range words {
		data = binary.BigEndian.AppendUint32(data, w)
	}
	dev := newFakeDevice()

	m, err := LoadShaderModule(dev, assets.MemoryFS{"shaders/sprite.vert.spv": data}, "shaders/sprite.vert.spv")
	require.NoError(t, err)
	assert.Equal(t, words, dev.modules[m])
}

func TestLoadShaderModuleMissingFile(t *testing.T) {
	_, err := LoadShaderModule(newFakeDevice(), assets.MemoryFS{}, "shaders/missing.spv")

	var nf *gpu.ResourceNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "shaders/missing.spv", nf.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadShaderModuleCorrupted(t *testing.T) {
	cases := map[string][]byte{
		"empty":     {},
		"truncated": spirv(0x00010000)[:7],
		"magic":     []byte("not a spir-v module!"),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			dev := newFakeDevice()
			_, err := LoadShaderModule(dev, assets.MemoryFS{"a.spv": data}, "a.spv")

			var nc *gpu.NativeCompilationError
			require.ErrorAs(t, err, &nc)
			assert.Equal(t, "a.spv", nc.Path)
			assert.ErrorIs(t, err, ErrInvalidSPIRV)
			assert.Zero(t, dev.moduleCount, "the device never sees a bad header")
		})
	}
}

func TestLoadShaderModuleRejectedByDevice(t *testing.T) {
	_, err := LoadShaderModule(newFakeDevice(), assets.MemoryFS{"a.spv": spirv(rejectedVersion)}, "a.spv")

	var nc *gpu.NativeCompilationError
	require.ErrorAs(t, err, &nc)
	var re *ResultError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrorInvalidShaderNv, re.Result)
	assert.Contains(t, err.Error(), "VK_ERROR_INVALID_SHADER_NV")
}

func TestLoadShaderStage(t *testing.T) {
	dev := newFakeDevice()
	store := assets.MemoryFS{"a.frag.spv": spirv(0x00010000)}

	desc, err := LoadShaderStage(dev, store, "a.frag.spv", gpu.StageFragment, "")
	require.NoError(t, err)
	assert.Equal(t, ShaderStageFragmentBit, desc.Stage)
	assert.Equal(t, "main", desc.EntryPoint)
	assert.True(t, desc.Module.IsValid())

	desc, err = LoadShaderStage(dev, store, "a.frag.spv", gpu.StageCompute, "cs_main")
	require.NoError(t, err)
	assert.Equal(t, ShaderStageComputeBit, desc.Stage)
	assert.Equal(t, "cs_main", desc.EntryPoint)
	assert.Equal(t, 2, dev.moduleCount, "no caching at this layer")

	_, err = LoadShaderStage(dev, store, "a.frag.spv", gpu.StageProgram, "")
	assert.ErrorIs(t, err, gpu.ErrUnsupportedStage)

	_, err = LoadShaderStage(dev, store, "b.frag.spv", gpu.StageFragment, "")
	var nf *gpu.ResourceNotFoundError
	assert.ErrorAs(t, err, &nf)
}
