package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-centrality/pkg/comm"
)

// ErrConfigInvalid wraps all validation failures
var ErrConfigInvalid = errors.New("invalid configuration")

// validate is a singleton validator instance
var validate = validator.New()

// DatasetConfig locates the edge-list dataset
type DatasetConfig struct {
	// URL is the fixed remote artifact, https:// or s3://, optionally .gz
	URL string `yaml:"url" validate:"required"`
	// Path is the local decompressed edge list
	Path string `yaml:"path" validate:"required"`
}

// ToleranceConfig are the verification tolerances; zero values mean the
// comparator defaults
type ToleranceConfig struct {
	Rel float64 `yaml:"rel" validate:"gte=0"`
	Abs float64 `yaml:"abs" validate:"gte=0"`
}

// Config is the full benchmark configuration
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`

	// SampleSize is k, the number of source vertices sampled per run
	SampleSize int `yaml:"sample_size" validate:"gt=0"`

	// Seed fixes the source sample so runs are comparable
	Seed int64 `yaml:"seed"`

	// Workers is both the local pool width and the cluster size
	Workers int `yaml:"workers" validate:"gt=0,lte=1024"`

	// Cluster endpoints; zero value means private in-process endpoints
	Cluster comm.Addrs `yaml:"cluster"`

	Tolerance ToleranceConfig `yaml:"tolerance"`

	// ResultsDSN is an optional Postgres DSN for recording run history
	ResultsDSN string `yaml:"results_dsn"`

	// MetricsAddr optionally exposes Prometheus metrics, e.g. ":9090"
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the configuration of the canonical demo run: the
// soc-LiveJournal1 snapshot, 1024 sampled sources, seed 123.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{
			URL:  "https://snap.stanford.edu/data/soc-LiveJournal1.txt.gz",
			Path: "data/soc-LiveJournal1.txt",
		},
		SampleSize: 1024,
		Seed:       123,
		Workers:    runtime.NumCPU(),
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration via struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s fails %q", ErrConfigInvalid, f.Namespace(), f.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}
