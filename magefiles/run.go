//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the probe on the backend from prism.toml.
func (Run) Probe() error {
	return runProbe("")
}

// Runs the probe on OpenGL.
func (Run) OpenGL() error {
	return runProbe("opengl")
}

// Runs the probe on Vulkan with validation from prism.toml.
func (Run) Vulkan() error {
	return runProbe("vulkan")
}

// Runs the unit tests. None of them need a GPU.
func (Run) Tests() error {
	return goTool.stream("test", "./engine/...")
}

func runProbe(backend string) error {
	if err := buildShaders(); err != nil {
		return err
	}
	args := []string{"run", ".", "-config", "prism.toml"}
	if backend != "" {
		args = append(args, "-backend", backend)
	}
	return goTool.stream(args...)
}
