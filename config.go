package canvas

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables of a Renderer. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// AtlasLayerSize is the edge length in pixels of each square atlas layer.
	// It is clamped to the backend's maximum texture size.
	AtlasLayerSize int `toml:"atlas_layer_size"`

	// MaxAtlasLayers caps the number of atlas layers. 0 means unlimited:
	// allocation then always succeeds by growing a new layer.
	MaxAtlasLayers int `toml:"max_atlas_layers"`

	// AtlasPadding is the number of empty pixels kept to the right of and
	// below every packed texture to prevent sampling bleed.
	AtlasPadding int `toml:"atlas_padding"`

	// InitialVertexCapacity is the starting capacity of the vertex buffers.
	InitialVertexCapacity int `toml:"initial_vertex_capacity"`

	// MaxVertices caps vertex buffer growth. 0 means unlimited.
	MaxVertices int `toml:"max_vertices"`

	// CaptureQueueSize bounds the number of frames waiting to be written by a
	// capture worker.
	CaptureQueueSize int `toml:"capture_queue_size"`

	// Debug enables per-rebuild stats logging at debug level.
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the configuration used by NewRenderer when none is given.
func DefaultConfig() Config {
	return Config{
		AtlasLayerSize:        2048,
		MaxAtlasLayers:        0,
		AtlasPadding:          1,
		InitialVertexCapacity: 1024,
		MaxVertices:           0,
		CaptureQueueSize:      30,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.AtlasLayerSize <= 0:
		return fmt.Errorf("canvas: atlas_layer_size must be positive, got %d", c.AtlasLayerSize)
	case c.MaxAtlasLayers < 0:
		return fmt.Errorf("canvas: max_atlas_layers must not be negative, got %d", c.MaxAtlasLayers)
	case c.AtlasPadding < 0:
		return fmt.Errorf("canvas: atlas_padding must not be negative, got %d", c.AtlasPadding)
	case c.InitialVertexCapacity < 0:
		return fmt.Errorf("canvas: initial_vertex_capacity must not be negative, got %d", c.InitialVertexCapacity)
	case c.MaxVertices < 0:
		return fmt.Errorf("canvas: max_vertices must not be negative, got %d", c.MaxVertices)
	case c.CaptureQueueSize <= 0:
		return fmt.Errorf("canvas: capture_queue_size must be positive, got %d", c.CaptureQueueSize)
	}
	return nil
}

// ParseConfig decodes TOML data on top of DefaultConfig, so omitted keys keep
// their defaults, and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("canvas: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("canvas: read config: %w", err)
	}
	return ParseConfig(data)
}

// WriteConfig encodes cfg as TOML to path.
func WriteConfig(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("canvas: encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("canvas: write config: %w", err)
	}
	return nil
}
