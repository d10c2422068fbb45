// Package config provides configuration loading and validation for the CLI.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory
const DefaultFile = "paperfig.yaml"

// Config represents the pipeline configuration loaded from a YAML file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Paths
	OutputDir    string `yaml:"output_dir" json:"output_dir,omitempty"`       // Root directory for run artifacts
	ProfilesDir  string `yaml:"profiles_dir" json:"profiles_dir,omitempty"`   // Directory holding journal profiles
	TemplatesDir string `yaml:"templates_dir" json:"templates_dir,omitempty"` // Directory holding template packs

	// Refinement loop
	MaxIterations      int     `yaml:"max_iterations" json:"max_iterations,omitempty" validate:"gte=0"`
	QualityThreshold   float64 `yaml:"quality_threshold" json:"quality_threshold,omitempty" validate:"gte=0,lte=1"`
	DimensionThreshold float64 `yaml:"dimension_threshold" json:"dimension_threshold,omitempty" validate:"gte=0,lte=1"`
	TemplatePack       string  `yaml:"template_pack" json:"template_pack,omitempty"`

	// Gates
	ArchCritiqueMode          string `yaml:"arch_critique_mode" json:"arch_critique_mode,omitempty" validate:"omitempty,oneof=off inline"`
	ArchCritiqueBlockSeverity string `yaml:"arch_critique_block_severity" json:"arch_critique_block_severity,omitempty" validate:"omitempty,oneof=minor major critical"`
	ReproAuditMode            string `yaml:"repro_audit_mode" json:"repro_audit_mode,omitempty" validate:"omitempty,oneof=soft hard"`

	// Plugins
	EnabledCritiqueRules []string `yaml:"enabled_critique_rules" json:"enabled_critique_rules,omitempty"`
	EnabledReproChecks   []string `yaml:"enabled_repro_checks" json:"enabled_repro_checks,omitempty"`

	// Provider
	Provider string `yaml:"provider" json:"provider,omitempty" validate:"omitempty,oneof=local gemini"` // Figure provider backend
	Model    string `yaml:"model" json:"model,omitempty"`                                               // Provider model name
	APIKey   string `yaml:"api_key" json:"api_key,omitempty"`                                           // Provider API key

	// Determinism
	Seed *int64 `yaml:"seed" json:"seed,omitempty"` // Optional deterministic seed recorded in run metadata
}

// Defaults returns the built-in configuration values
func Defaults() Config {
	return Config{
		OutputDir:                 "output",
		ProfilesDir:               "profiles",
		TemplatesDir:              "templates",
		MaxIterations:             3,
		QualityThreshold:          0.75,
		DimensionThreshold:        0.55,
		TemplatePack:              "expanded_v1",
		ArchCritiqueMode:          "inline",
		ArchCritiqueBlockSeverity: "critical",
		ReproAuditMode:            "soft",
		Provider:                  "local",
	}
}

var validate = validator.New()

// Load reads configuration from a YAML file. A missing file at the default
// location is not an error; explicit paths must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg := Defaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-value fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.ProfilesDir == "" {
		result.ProfilesDir = defaults.ProfilesDir
	}
	if result.TemplatesDir == "" {
		result.TemplatesDir = defaults.TemplatesDir
	}
	if result.TemplatePack == "" {
		result.TemplatePack = defaults.TemplatePack
	}
	if result.ArchCritiqueMode == "" {
		result.ArchCritiqueMode = defaults.ArchCritiqueMode
	}
	if result.ArchCritiqueBlockSeverity == "" {
		result.ArchCritiqueBlockSeverity = defaults.ArchCritiqueBlockSeverity
	}
	if result.ReproAuditMode == "" {
		result.ReproAuditMode = defaults.ReproAuditMode
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.QualityThreshold == 0 {
		result.QualityThreshold = defaults.QualityThreshold
	}
	if result.DimensionThreshold == 0 {
		result.DimensionThreshold = defaults.DimensionThreshold
	}

	return result
}

// Fingerprint returns the hex sha256 digest of the config's canonical JSON
// form. The same settings always fingerprint identically, which is what the
// config_hash_match audit check compares against.
func (c *Config) Fingerprint() string {
	canonical := *c
	canonical.APIKey = "" // secrets never feed the fingerprint
	data, err := json.Marshal(canonical)
	if err != nil {
		return ""
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
