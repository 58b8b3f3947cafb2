package loaders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/prism/engine/resources"
)

var ErrEmptyShaderSource = errors.New("shader source is empty")

// ShaderLoader loads GLSL text. The resource data is a string.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(name string, data []byte, params interface{}) (*resources.Resource, error) {
	src := string(data)
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyShaderSource)
	}
	return &resources.Resource{
		Name:     resourceName(name, params),
		FullPath: name,
		Type:     resources.ResourceTypeShaderSource,
		DataSize: uint64(len(data)),
		Data:     src,
	}, nil
}

func (sl *ShaderLoader) Unload(res *resources.Resource) error {
	return unload(res)
}
