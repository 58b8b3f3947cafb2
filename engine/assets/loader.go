package assets

import "github.com/spaghettifunk/prism/engine/resources"

// Loader turns the raw bytes of an asset into a resource. The Data field of
// the returned resource depends on the loader.
type Loader interface {
	Load(name string, data []byte, params interface{}) (*resources.Resource, error)
	Unload(*resources.Resource) error
}
