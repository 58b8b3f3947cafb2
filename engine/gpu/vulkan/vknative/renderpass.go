package vknative

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/gpu/vulkan"
)

/**
 * @brief Creates a single subpass render pass with one color attachment and, when the
 * device has a depth format, a depth attachment. Graphics pipelines are created
 * against it.
 */
func (d *Device) CreateRenderPass(colorFormat vulkan.Format, samples uint32) (vulkan.RenderPass, error) {
	if samples == 0 {
		samples = 1
	}
	attachments := []vk.AttachmentDescription{{
		Format:         vk.Format(colorFormat),
		Samples:        vk.SampleCountFlagBits(samples),
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutTransferSrcOptimal,
	}}
	colorReference := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    colorReference,
	}

	if d.depthFormat != vk.FormatUndefined {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         d.depthFormat,
			Samples:        vk.SampleCountFlagBits(samples),
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpClear,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var renderPass vk.RenderPass
	err := d.locks.SafeCall(vulkan.RenderpassManagement, func() error {
		if res := vk.CreateRenderPass(d.logical, &createInfo, nil, &renderPass); res != vk.Success {
			return resultError("vkCreateRenderPass", res)
		}
		return nil
	})
	if err != nil {
		return vulkan.RenderPass{}, err
	}
	return vulkan.RenderPass(d.renderPasses.Acquire(renderPass)), nil
}

func (d *Device) DestroyRenderPass(rp vulkan.RenderPass) {
	renderPass, err := d.renderPasses.Release(core.Handle(rp))
	if err != nil {
		core.LogWarn("destroy render pass: %s", err)
		return
	}
	_ = d.locks.SafeCall(vulkan.RenderpassManagement, func() error {
		vk.DestroyRenderPass(d.logical, renderPass, nil)
		return nil
	})
}
