package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/prism/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// ClientAPI is the native API the window is created for.
type ClientAPI uint8

const (
	APIOpenGL ClientAPI = iota
	APIVulkan
)

type Platform struct {
	Window *glfw.Window
	api    ClientAPI
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

// Startup opens a hidden window. For OpenGL the window's 4.1 core context is made
// current on the calling thread.
func (p *Platform) Startup(applicationName string, width, height uint32, api ClientAPI) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	switch api {
	case APIOpenGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	case APIVulkan:
		if !glfw.VulkanSupported() {
			glfw.Terminate()
			return fmt.Errorf("glfw reports no Vulkan loader")
		}
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	}

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		core.LogError("failed to create window: %s", err)
		return err
	}
	if api == APIOpenGL {
		window.MakeContextCurrent()
	}
	p.Window = window
	p.api = api
	p.Window.SetCloseCallback(closeCallback)
	return nil
}

// RequiredInstanceExtensions lists the Vulkan instance extensions the window needs.
func (p *Platform) RequiredInstanceExtensions() []string {
	if p.Window == nil {
		return nil
	}
	return p.Window.GetRequiredInstanceExtensions()
}

// VulkanProcAddr returns vkGetInstanceProcAddr as resolved by glfw.
func (p *Platform) VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) ShouldClose() bool {
	return p.Window != nil && p.Window.ShouldClose()
}

func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

func closeCallback(w *glfw.Window) {
	core.LogDebug("window close requested")
}
