package vulkan

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/gpu"
)

var ErrDeviceLost = errors.New("vulkan device lost")

/**
 * @brief The subset of a Vulkan logical device used to realize pipelines.
 *
 * Create calls return a *ResultError when the driver reports a failure.
 */
type Device interface {
	CreateShaderModule(code []uint32) (ShaderModule, error)
	DestroyShaderModule(m ShaderModule)

	CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(l DescriptorSetLayout)

	CreatePipelineLayout(setLayouts []DescriptorSetLayout) (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)

	CreateGraphicsPipeline(info *GraphicsPipelineInfo) (Pipeline, error)
	CreateComputePipeline(info *ComputePipelineInfo) (Pipeline, error)
	DestroyPipeline(p Pipeline)

	CmdBindPipeline(cmd CommandBuffer, bindPoint PipelineBindPoint, p Pipeline)

	// WaitIdle blocks until the device finished all submitted work.
	WaitIdle() error
}

// ResultError is a failed vkCreate*/vkQueue* call.
type ResultError struct {
	Op     string
	Result Result
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s failed with %s", e.Op, ResultString(e.Result, true))
}

// Is matches ErrDeviceLost and gpu.ErrContextLost for VK_ERROR_DEVICE_LOST.
func (e *ResultError) Is(target error) bool {
	return (target == ErrDeviceLost || target == gpu.ErrContextLost) && e.Result == ErrorDeviceLost
}
