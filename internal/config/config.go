// Package config provides configuration management for the imaging
// transcriptomics pipeline with layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. Environment variables (IMGTX_* prefix)
//  2. Config file ($IMGTX_HOME/config.yaml, default ~/.imgtx/config.yaml)
//  3. Built-in defaults
//
// IMPORTANT: This package may import internal/errors, but MUST NOT import
// any other internal packages.
package config

// Config is the root configuration structure for the pipeline.
type Config struct {
	// Logging contains rotation bounds for the shared module log file.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Output contains naming policy for per-run output directories.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Data contains locations of the bundled reference datasets.
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Analysis contains bounds for the PLS analysis parameterization.
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
}

// LoggingConfig bounds the rotating module-level log file. The per-run log
// file is never rotated and is not governed by these settings.
type LoggingConfig struct {
	// MaxSizeMB is the maximum size of the module log before rotation.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files to retain.
	// Default: 3
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`

	// MaxAgeDays is the maximum age of a rotated file before deletion.
	// Default: 28
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`

	// Compress enables gzip compression of rotated files.
	// Default: true
	Compress bool `yaml:"compress" mapstructure:"compress"`
}

// OutputConfig controls per-run output directory naming.
type OutputConfig struct {
	// DirPrefix namespaces analysis output directories from unrelated files
	// in the same folder. Default: "Imt_"
	DirPrefix string `yaml:"dir_prefix" mapstructure:"dir_prefix"`

	// MaxCollisionSuffix bounds the numeric disambiguation suffix appended
	// when the target directory already exists. Default: 99
	MaxCollisionSuffix int `yaml:"max_collision_suffix" mapstructure:"max_collision_suffix"`
}

// DataConfig locates the reference datasets the analysis depends on.
// Relative paths are resolved against $IMGTX_HOME/data.
type DataConfig struct {
	// AtlasPath is the parcellation volume used for region averaging.
	// Default: "atlas-desikankilliany_1mm_MNI152.nii.gz"
	AtlasPath string `yaml:"atlas_path" mapstructure:"atlas_path"`

	// ExpressionPath is the normalised gene expression matrix (CSV, rows =
	// regions, gene columns from the third column on).
	// Default: "gene_expression_data.csv"
	ExpressionPath string `yaml:"expression_path" mapstructure:"expression_path"`

	// LabelsPath is the gene label list, one label per line.
	// Default: "gene_expression_labels.txt"
	LabelsPath string `yaml:"labels_path" mapstructure:"labels_path"`

	// Regions is the number of atlas regions averaged into the feature
	// vector. Default: 41 (left-hemisphere Desikan-Killiany)
	Regions int `yaml:"regions" mapstructure:"regions"`
}

// AnalysisConfig bounds the analysis parameterization.
type AnalysisConfig struct {
	// MaxComponents is the upper bound on extractable PLS components.
	// Default: 15
	MaxComponents int `yaml:"max_components" mapstructure:"max_components"`
}
