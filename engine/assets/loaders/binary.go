package loaders

import (
	"github.com/spaghettifunk/prism/engine/resources"
)

// BinaryLoader keeps the bytes as they are. Used for SPIR-V blobs.
type BinaryLoader struct {
	Type resources.ResourceType
}

func (bl *BinaryLoader) Load(name string, data []byte, params interface{}) (*resources.Resource, error) {
	rt := bl.Type
	if rt == resources.ResourceTypeNone {
		rt = resources.ResourceTypeBinary
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &resources.Resource{
		Name:     resourceName(name, params),
		FullPath: name,
		Type:     rt,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *resources.Resource) error {
	return unload(res)
}
