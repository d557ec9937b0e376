// Package config resolves the pipeline configuration from defaults, an
// optional yaml file, environment overrides for tool paths and command line
// flags, in that order of precedence.
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ToolPaths holds the executable paths of the external analysis tools.
// Each one can be overridden through the environment variable of the same
// (upper-cased) name, matching how cluster deployments pin tool builds.
type ToolPaths struct {
	Cutadapt string `yaml:"cutadapt"`
	Pear     string `yaml:"pear"`
	Usearch  string `yaml:"usearch"`
	Vsearch  string `yaml:"vsearch"`
}

// Config is the immutable parameter set of one pipeline run. It is
// constructed once at startup and passed to the stage chain; every stage
// declares only the subset of fields it needs.
//
// The numeric thresholds are forwarded verbatim to the external tools and
// never reinterpreted by the pipeline itself.
type Config struct {
	InputDir string `yaml:"input_dir"`
	WorkDir  string `yaml:"work_dir"`
	Cores    int    `yaml:"cores"`

	ForwardPrimer string `yaml:"forward_primer"`
	ReversePrimer string `yaml:"reverse_primer"`

	CutadaptMinLength int `yaml:"cutadapt_min_length"`

	PearMinOverlap        int `yaml:"pear_min_overlap"`
	PearMaxAssemblyLength int `yaml:"pear_max_assembly_length"`
	PearMinAssemblyLength int `yaml:"pear_min_assembly_length"`

	VsearchFilterMaxEE    int `yaml:"vsearch_filter_maxee"`
	VsearchFilterTruncLen int `yaml:"vsearch_filter_trunclen"`

	VsearchDerepMinUniqueSize int `yaml:"vsearch_derep_minuniquesize"`

	// UchimeRefDB is the reference database consumed only by the
	// chimera-detection stage.
	UchimeRefDB string `yaml:"uchime_ref_db"`

	Tools ToolPaths `yaml:"tools"`

	LogLevel string `yaml:"log_level"`
}

// MissingParamError reports a required parameter absent at startup. It is
// fatal before any stage runs.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required parameter %q is not set", e.Name)
}

// Default returns the built-in configuration: V4 region primers and the
// standard tool names resolved through PATH.
func Default() *Config {
	return &Config{
		InputDir:      ".",
		WorkDir:       ".",
		Cores:         1,
		ForwardPrimer: "ATTAGAWACCCVNGTAGTCC",
		ReversePrimer: "TTACCGCGGCKGCTGGCAC",
		UchimeRefDB:   "/16SrDNA/pr2/pr2_gb203_version_4.5.fasta",
		Tools: ToolPaths{
			Cutadapt: "cutadapt",
			Pear:     "pear",
			Usearch:  "usearch",
			Vsearch:  "vsearch",
		},
		LogLevel: "info",
	}
}

// Load resolves the configuration from defaults, then the yaml file at path
// (skipped when path is empty), then the tool path environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading config file %q", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %q", path)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CUTADAPT"); v != "" {
		c.Tools.Cutadapt = v
	}
	if v := os.Getenv("PEAR"); v != "" {
		c.Tools.Pear = v
	}
	if v := os.Getenv("USEARCH"); v != "" {
		c.Tools.Usearch = v
	}
	if v := os.Getenv("VSEARCH"); v != "" {
		c.Tools.Vsearch = v
	}
}

// Validate checks that every required parameter is present. The numeric
// thresholds have no sensible defaults; leaving one unset aborts the run
// before any stage executes.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value int
	}{
		{"cutadapt_min_length", c.CutadaptMinLength},
		{"pear_min_overlap", c.PearMinOverlap},
		{"pear_max_assembly_length", c.PearMaxAssemblyLength},
		{"pear_min_assembly_length", c.PearMinAssemblyLength},
		{"vsearch_filter_maxee", c.VsearchFilterMaxEE},
		{"vsearch_filter_trunclen", c.VsearchFilterTruncLen},
		{"vsearch_derep_minuniquesize", c.VsearchDerepMinUniqueSize},
	}
	for _, param := range required {
		if param.value <= 0 {
			return &MissingParamError{Name: param.name}
		}
	}

	if c.UchimeRefDB == "" {
		return &MissingParamError{Name: "uchime_ref_db"}
	}

	return nil
}
