package loaders

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/resources"
)

const PipelineExtension = ".pipeline.toml"

var ErrInvalidPipeline = errors.New("invalid pipeline description")

// PipelineLoader parses a *.pipeline.toml description into a resources.PipelineConfig.
type PipelineLoader struct{}

func (pl *PipelineLoader) Load(name string, data []byte, params interface{}) (*resources.Resource, error) {
	cfg := &resources.PipelineConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: %s line %d column %d: %s", ErrInvalidPipeline, name, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidPipeline, name, err)
	}
	if cfg.Name == "" {
		cfg.Name = resourceName(name, params)
	}
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("%w: %s: no stages", ErrInvalidPipeline, name)
	}
	for i, s := range cfg.Stages {
		if s.Stage == "" {
			return nil, fmt.Errorf("%w: %s: stage %d has no kind", ErrInvalidPipeline, name, i)
		}
		if s.GLSL == "" && s.SPIRV == "" {
			return nil, fmt.Errorf("%w: %s: stage `%s` references no source", ErrInvalidPipeline, name, s.Stage)
		}
		if s.EntryPoint == "" {
			cfg.Stages[i].EntryPoint = "main"
		}
	}

	return &resources.Resource{
		Name:     cfg.Name,
		FullPath: name,
		Type:     resources.ResourceTypePipeline,
		DataSize: uint64(len(data)),
		Data:     cfg,
	}, nil
}

func (pl *PipelineLoader) Unload(res *resources.Resource) error {
	return unload(res)
}

// resourceName picks params["name"] when given, the file name without extensions otherwise.
func resourceName(name string, params interface{}) string {
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		return p["name"]
	}
	base := path.Base(name)
	if strings.HasSuffix(base, PipelineExtension) {
		return strings.TrimSuffix(base, PipelineExtension)
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func unload(res *resources.Resource) error {
	if res == nil {
		return errors.New("cannot unload a nil resource")
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}
