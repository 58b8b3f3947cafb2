//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{"*.vert", "*.frag", "*.geom", "*.comp"}

// Compiles every GLSL stage under assets/shaders into SPIR-V next to its source.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the probe binary into bin/prism.
func (Build) Probe() error {
	mg.Deps(Build.Shaders)
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	return goTool.stream("build", "-o", "bin/prism", ".")
}

func buildShaders() error {
	var sources []string
	for _, pattern := range shaderSources {
		matches, err := filepath.Glob(filepath.Join("assets", "shaders", pattern))
		if err != nil {
			return err
		}
		sources = append(sources, matches...)
	}
	if len(sources) == 0 {
		fmt.Println("no shaders to compile")
		return nil
	}
	if err := glslc.require(); err != nil {
		return err
	}
	compiled := 0
	for _, src := range sources {
		if !needsRebuild(src, src+".spv") {
			continue
		}
		if err := glslc.run("-fauto-map-locations", "-fauto-bind-uniforms", src, "-o", src+".spv"); err != nil {
			return err
		}
		compiled++
	}
	fmt.Printf("compiled %d of %d shader(s)\n", compiled, len(sources))
	return nil
}

func needsRebuild(src, dst string) bool {
	s, err := os.Stat(src)
	if err != nil {
		return true
	}
	d, err := os.Stat(dst)
	if err != nil {
		return true
	}
	return s.ModTime().After(d.ModTime())
}
