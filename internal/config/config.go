package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/tempalloc/cache"
	"github.com/joshuapare/tempalloc/heap"
)

// EnvPrefix prefixes every environment override, e.g. TEMPALLOC_HEAP=pool or
// TEMPALLOC_LOG_LEVEL=debug.
const EnvPrefix = "TEMPALLOC"

// EnvConfigFile names the environment variable consulted when no config path
// is given.
const EnvConfigFile = "TEMPALLOC_CONFIG"

//go:embed schema.json
var schema []byte

// Config is the tempctl configuration.
type Config struct {
	// Heap selects the allocator backend: go, pool or mmap.
	Heap string `json:"heap" yaml:"heap" envconfig:"HEAP"`
	// HeapLimit caps outstanding heap bytes. 0 disables the limit.
	HeapLimit int `json:"heapLimit" yaml:"heapLimit" envconfig:"HEAP_LIMIT"`
	// InitialCapacity is the first key table allocation.
	InitialCapacity int `json:"initialCapacity" yaml:"initialCapacity" envconfig:"INITIAL_CAPACITY"`
	// MaxKeys bounds the key table. 0 means unbounded.
	MaxKeys int `json:"maxKeys" yaml:"maxKeys" envconfig:"MAX_KEYS"`
	// Metrics is the expvar map name. Empty disables metrics.
	Metrics string `json:"metrics,omitempty" yaml:"metrics,omitempty" envconfig:"METRICS"`

	Log   Log   `json:"log" yaml:"log" envconfig:"LOG"`
	Bench Bench `json:"bench" yaml:"bench" envconfig:"BENCH"`
}

// Log configures internal/logger.
type Log struct {
	Level string `json:"level" yaml:"level" envconfig:"LEVEL"`
	// Dir, when set, receives daily JSON log files instead of stderr.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" envconfig:"DIR"`
}

// Bench configures the synthetic workload run by tempctl bench.
type Bench struct {
	Depth      int    `json:"depth" yaml:"depth" envconfig:"DEPTH"`
	Iterations int    `json:"iterations" yaml:"iterations" envconfig:"ITERATIONS"`
	Sites      int    `json:"sites" yaml:"sites" envconfig:"SITES"`
	MinSize    int    `json:"minSize" yaml:"minSize" envconfig:"MIN_SIZE"`
	MaxSize    int    `json:"maxSize" yaml:"maxSize" envconfig:"MAX_SIZE"`
	Seed       uint64 `json:"seed" yaml:"seed" envconfig:"SEED"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Heap:            heap.BackendGo,
		InitialCapacity: cache.DefaultInitialCapacity,
		Log:             Log{Level: "info"},
		Bench: Bench{
			Depth:      32,
			Iterations: 1000,
			Sites:      4,
			MinSize:    256,
			MaxSize:    8192,
			Seed:       1,
		},
	}
}

// Load builds the configuration in priority order:
//  1. Default values
//  2. The file at path, or at $TEMPALLOC_CONFIG when path is empty
//     (.yaml/.yml parsed as YAML, anything else as JSON)
//  3. TEMPALLOC_* environment variables
//
// The file is validated against the embedded JSON schema as written, so
// unknown keys are rejected. The merged result is validated again after the
// environment has been applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := validateDocument(data, isYAML(path)); err != nil {
			return nil, err
		}
		if err := unmarshal(data, cfg, isYAML(path)); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func unmarshal(data []byte, cfg *Config, asYAML bool) error {
	if asYAML {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse JSON config file: %w", err)
	}
	return nil
}

// validateDocument checks the raw file against the schema before it is
// decoded into a Config.
func validateDocument(data []byte, asYAML bool) error {
	var doc gojsonschema.JSONLoader
	if asYAML {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
		if v == nil {
			return nil
		}
		doc = gojsonschema.NewGoLoader(v)
	} else {
		if !json.Valid(data) {
			return errors.New("failed to parse JSON config file: invalid JSON")
		}
		doc = gojsonschema.NewBytesLoader(data)
	}

	merr, err := schemaErrors(doc)
	if err != nil {
		return err
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("config: invalid file: %w", err)
	}
	return nil
}

func schemaErrors(doc gojsonschema.JSONLoader) (*multierror.Error, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), doc)
	if err != nil {
		return nil, fmt.Errorf("config: schema validation: %w", err)
	}

	var merr *multierror.Error
	for _, verr := range result.Errors() {
		merr = multierror.Append(merr, errors.New(verr.String()))
	}
	return merr, nil
}

// Validate checks cfg against the schema and the cross-field rules the schema
// cannot express. All violations are reported together.
func (c *Config) Validate() error {
	merr, err := schemaErrors(gojsonschema.NewGoLoader(c))
	if err != nil {
		return err
	}
	if c.Bench.MinSize > c.Bench.MaxSize {
		merr = multierror.Append(merr, fmt.Errorf("bench: minSize %d exceeds maxSize %d", c.Bench.MinSize, c.Bench.MaxSize))
	}
	if c.MaxKeys > 0 && c.Bench.Sites*c.Bench.Depth > c.MaxKeys {
		merr = multierror.Append(merr, fmt.Errorf("bench: %d sites x depth %d exceeds maxKeys %d",
			c.Bench.Sites, c.Bench.Depth, c.MaxKeys))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Allocator builds the configured heap backend, wrapped in a budget when
// HeapLimit is set.
func (c *Config) Allocator() (heap.Allocator, error) {
	a, err := heap.ByName(c.Heap)
	if err != nil {
		return nil, err
	}
	if c.HeapLimit > 0 {
		return heap.NewLimit(a, c.HeapLimit), nil
	}
	return a, nil
}

// CacheOptions builds cache options. log may be nil.
func (c *Config) CacheOptions(log *slog.Logger) *cache.Options {
	opts := &cache.Options{
		InitialCapacity: c.InitialCapacity,
		MaxKeys:         c.MaxKeys,
		Logger:          log,
	}
	if c.Metrics != "" {
		opts.Metrics = cache.NewMetrics(c.Metrics)
	}
	return opts
}

// YAML renders cfg as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
