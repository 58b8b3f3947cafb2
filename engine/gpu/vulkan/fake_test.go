package vulkan

import (
	"encoding/binary"

	"github.com/spaghettifunk/prism/engine/core"
)

const rejectedVersion = 0xDEAD

// spirv builds a little endian module header followed by extra words.
func spirv(version uint32, extra ...uint32) []byte {
	words := append([]uint32{spirvMagic, version, 0, 1, 0}, extra...)
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

type boundPipeline struct {
	cmd       CommandBuffer
	bindPoint PipelineBindPoint
	pipeline  Pipeline
}

// fakeDevice records every object it creates. Modules with version rejectedVersion
// are rejected like an invalid shader.
type fakeDevice struct {
	next uint32

	modules      map[ShaderModule][]uint32
	setLayouts   map[DescriptorSetLayout][]DescriptorSetLayoutBinding
	layouts      map[PipelineLayout]bool
	pipelines    map[Pipeline]interface{}
	moduleCount  int
	graphicsInfo []*GraphicsPipelineInfo
	computeInfo  []*ComputePipelineInfo
	bound        []boundPipeline
	waitIdle     int

	failPipelines Result
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		modules:    make(map[ShaderModule][]uint32),
		setLayouts: make(map[DescriptorSetLayout][]DescriptorSetLayoutBinding),
		layouts:    make(map[PipelineLayout]bool),
		pipelines:  make(map[Pipeline]interface{}),
	}
}

func (d *fakeDevice) handle() core.Handle {
	d.next++
	return core.Handle{Index: d.next, Generation: 1}
}

func (d *fakeDevice) live() int {
	return len(d.modules) + len(d.setLayouts) + len(d.layouts) + len(d.pipelines)
}

func (d *fakeDevice) CreateShaderModule(code []uint32) (ShaderModule, error) {
	if len(code) > 1 && code[1] == rejectedVersion {
		return ShaderModule{}, &ResultError{Op: "vkCreateShaderModule", Result: ErrorInvalidShaderNv}
	}
	m := ShaderModule(d.handle())
	d.modules[m] = code
	d.moduleCount++
	return m, nil
}

func (d *fakeDevice) DestroyShaderModule(m ShaderModule) { delete(d.modules, m) }

func (d *fakeDevice) CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error) {
	l := DescriptorSetLayout(d.handle())
	d.setLayouts[l] = bindings
	return l, nil
}

func (d *fakeDevice) DestroyDescriptorSetLayout(l DescriptorSetLayout) { delete(d.setLayouts, l) }

func (d *fakeDevice) CreatePipelineLayout(setLayouts []DescriptorSetLayout) (PipelineLayout, error) {
	l := PipelineLayout(d.handle())
	d.layouts[l] = true
	return l, nil
}

func (d *fakeDevice) DestroyPipelineLayout(l PipelineLayout) { delete(d.layouts, l) }

func (d *fakeDevice) CreateGraphicsPipeline(info *GraphicsPipelineInfo) (Pipeline, error) {
	if d.failPipelines != Success {
		return Pipeline{}, &ResultError{Op: "vkCreateGraphicsPipelines", Result: d.failPipelines}
	}
	p := Pipeline(d.handle())
	d.pipelines[p] = info
	d.graphicsInfo = append(d.graphicsInfo, info)
	return p, nil
}

func (d *fakeDevice) CreateComputePipeline(info *ComputePipelineInfo) (Pipeline, error) {
	if d.failPipelines != Success {
		return Pipeline{}, &ResultError{Op: "vkCreateComputePipelines", Result: d.failPipelines}
	}
	p := Pipeline(d.handle())
	d.pipelines[p] = info
	d.computeInfo = append(d.computeInfo, info)
	return p, nil
}

func (d *fakeDevice) DestroyPipeline(p Pipeline) { delete(d.pipelines, p) }

func (d *fakeDevice) CmdBindPipeline(cmd CommandBuffer, bindPoint PipelineBindPoint, p Pipeline) {
	d.bound = append(d.bound, boundPipeline{cmd, bindPoint, p})
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdle++
	return nil
}
