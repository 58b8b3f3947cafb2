package vulkan

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/gpu"
)

const spirvMagic = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V bytecode")

/**
 * @brief Loads pre-compiled SPIR-V from store and creates a shader module.
 *
 * A missing or unreadable file fails with *gpu.ResourceNotFoundError. A blob
 * that is not SPIR-V, or that the device rejects, fails with
 * *gpu.NativeCompilationError. Nothing is cached.
 */
func LoadShaderModule(dev Device, store assets.Opener, path string) (ShaderModule, error) {
	st, err := store.Open(path)
	if err != nil {
		return ShaderModule{}, &gpu.ResourceNotFoundError{Path: path, Err: err}
	}
	return createShaderModule(dev, path, st.Data())
}

// LoadShaderStage loads a module and pairs it with its stage and entry point.
// An empty entry point selects "main".
func LoadShaderStage(dev Device, store assets.Opener, path string, stage gpu.ShaderStage, entryPoint string) (StageDescriptor, error) {
	flag, ok := stageFlag(stage)
	if !ok {
		return StageDescriptor{}, fmt.Errorf("%w: %s", gpu.ErrUnsupportedStage, stage)
	}
	module, err := LoadShaderModule(dev, store, path)
	if err != nil {
		return StageDescriptor{}, err
	}
	if entryPoint == "" {
		entryPoint = "main"
	}
	return StageDescriptor{Stage: flag, Module: module, EntryPoint: entryPoint}, nil
}

func createShaderModule(dev Device, path string, data []byte) (ShaderModule, error) {
	code, err := bytesToBytecode(data)
	if err != nil {
		return ShaderModule{}, &gpu.NativeCompilationError{Op: "vkCreateShaderModule", Path: path, Reason: "bad header", Err: err}
	}
	module, err := dev.CreateShaderModule(code)
	if err != nil {
		return ShaderModule{}, &gpu.NativeCompilationError{Op: "vkCreateShaderModule", Path: path, Reason: "device rejected bytecode", Err: err}
	}
	return module, nil
}

// bytesToBytecode reinterprets SPIR-V bytes of either byte order as host words and checks the header.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of 4", ErrInvalidSPIRV, len(b))
	}
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	switch byteCode[0] {
	case spirvMagic:
	case bits.ReverseBytes32(spirvMagic):
		// Big endian module; the words are valid once swapped.
		for i, w := range byteCode {
			byteCode[i] = bits.ReverseBytes32(w)
		}
	default:
		return nil, fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, byteCode[0])
	}
	return byteCode, nil
}
