// Package config loads runtime settings from the environment and the
// per-source pipeline definitions from JSON or YAML files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/kiriyama-dx/hcpmix/internal/source"
)

// DefaultMonths is the retention horizon applied when a source file
// does not set filters.months_to_retain.
const DefaultMonths = 7

const monthsKey = "months_to_retain"

// Runtime holds process-level settings.
type Runtime struct {
	ConfigDir     string `env:"HCPMIX_CONFIG_DIR" envDefault:"config"`
	OutputDir     string `env:"HCPMIX_OUTPUT_DIR" envDefault:"outputs"`
	LogLevel      string `env:"HCPMIX_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"HCPMIX_LOG_FORMAT" envDefault:"text"`
	ReferenceDate string `env:"HCPMIX_REFERENCE_DATE"`
}

// LoadRuntime reads runtime settings from environment variables.
func LoadRuntime() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("config: parse env: %w", err)
	}
	return rt, nil
}

// Source is one per-source pipeline definition.
type Source struct {
	Source  Input   `json:"source" yaml:"source"`
	Filters Filters `json:"filters" yaml:"filters"`
	Output  Output  `json:"output" yaml:"output"`
}

// Input locates a source's raw export.
type Input struct {
	Path    string `json:"path" yaml:"path"`
	Charset string `json:"charset" yaml:"charset"`
}

// Output holds a per-source destination.
type Output struct {
	CSV string `json:"csv" yaml:"csv"`
}

// Filters holds the retention horizon plus exact-match predicates over
// raw columns. Every key other than months_to_retain is a predicate;
// predicates are sorted by field name so runs are deterministic.
type Filters struct {
	Months     *int
	Predicates []source.Predicate
}

func (f *Filters) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return f.fromMap(m)
}

func (f *Filters) UnmarshalYAML(value *yaml.Node) error {
	var m map[string]any
	if err := value.Decode(&m); err != nil {
		return err
	}
	return f.fromMap(m)
}

func (f *Filters) fromMap(m map[string]any) error {
	for key, val := range m {
		if key == monthsKey {
			switch n := val.(type) {
			case int:
				months := n
				f.Months = &months
			case float64:
				if n != math.Trunc(n) {
					return fmt.Errorf("%s: must be an integer", monthsKey)
				}
				months := int(n)
				f.Months = &months
			default:
				return fmt.Errorf("%s: must be an integer", monthsKey)
			}
			continue
		}
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("filter %s: value must be a string", key)
		}
		f.Predicates = append(f.Predicates, source.Predicate{Field: key, Value: s})
	}
	sort.Slice(f.Predicates, func(i, j int) bool {
		return f.Predicates[i].Field < f.Predicates[j].Field
	})
	return nil
}

// Unified configures the consolidated dataset's destinations.
type Unified struct {
	Output UnifiedOutput `json:"output" yaml:"output"`
}

// UnifiedOutput holds the destinations for the consolidated dataset.
type UnifiedOutput struct {
	CSV       string `json:"csv" yaml:"csv"`
	SQLite    string `json:"sqlite" yaml:"sqlite"`
	UploadURL string `json:"upload_url" yaml:"upload_url"`
	Stdout    bool   `json:"stdout" yaml:"stdout"`
}

// LoadSource reads and validates one source's definition file.
func LoadSource(path string) (Source, error) {
	var s Source
	if err := decodeFile(path, &s); err != nil {
		return Source{}, err
	}
	if s.Source.Path == "" {
		return Source{}, fmt.Errorf("config %s: source.path is required", path)
	}
	if s.Filters.Months == nil {
		months := DefaultMonths
		s.Filters.Months = &months
	} else if *s.Filters.Months < 0 {
		return Source{}, fmt.Errorf("config %s: %s must not be negative", path, monthsKey)
	}
	return s, nil
}

// LoadUnified reads the consolidated dataset's definition file.
func LoadUnified(path string) (Unified, error) {
	var u Unified
	if err := decodeFile(path, &u); err != nil {
		return Unified{}, err
	}
	return u, nil
}

// Locate returns the definition file for the given name under dir,
// trying .json, .yaml, then .yml.
func Locate(dir, name string) (string, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: no %s.{json,yaml,yml} under %s", name, dir)
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	return nil
}
