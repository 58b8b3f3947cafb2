package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window width, if applicable.
	Width uint32 `toml:"width"`
	// Window height, if applicable.
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level LogLevel `toml:"level"`
}

type RendererConfig struct {
	// Backend selects the native API: "opengl" or "vulkan".
	Backend string `toml:"backend"`
	// FailurePolicy is "cache" (remember compile failures until the context is
	// invalidated) or "retry" (recompile on every resolve).
	FailurePolicy string `toml:"failure_policy"`
	// Validation enables the Vulkan validation layers.
	Validation bool `toml:"validation"`
}

type AssetsConfig struct {
	// Root directory holding shaders and pipeline descriptions.
	Root string `toml:"root"`
	// Watch enables hot reload of pipelines on file changes.
	Watch bool `toml:"watch"`
}

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Log         LogConfig         `toml:"log"`
	Renderer    RendererConfig    `toml:"renderer"`
	Assets      AssetsConfig      `toml:"assets"`
}

func DefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:   "Prism",
			Width:  1280,
			Height: 720,
		},
		Log: LogConfig{
			Level: LogLevelInfo,
		},
		Renderer: RendererConfig{
			Backend:       "opengl",
			FailurePolicy: "cache",
		},
		Assets: AssetsConfig{
			Root:  "assets",
			Watch: true,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func ParseConfig(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%w: line %d column %d: %s", ErrInvalidConfig, row, col, derr.Error())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Renderer.Backend {
	case "opengl", "vulkan":
	default:
		return fmt.Errorf("%w: unknown renderer backend `%s`", ErrInvalidConfig, c.Renderer.Backend)
	}
	switch c.Renderer.FailurePolicy {
	case "cache", "retry":
	default:
		return fmt.Errorf("%w: unknown failure policy `%s`", ErrInvalidConfig, c.Renderer.FailurePolicy)
	}
	switch c.Log.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("%w: unknown log level `%s`", ErrInvalidConfig, c.Log.Level)
	}
	if c.Assets.Root == "" {
		return fmt.Errorf("%w: assets root is empty", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
