package config

import (
	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - logging rotation bounds must be positive
//   - output dir prefix must not be empty
//   - region count and component cap must be positive
//   - data file locations must not be empty
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrConfigInvalid, "config is nil")
	}

	if cfg.Logging.MaxSizeMB <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"logging.max_size_mb must be positive, got %d", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.MaxBackups < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"logging.max_backups must not be negative, got %d", cfg.Logging.MaxBackups)
	}
	if cfg.Logging.MaxAgeDays < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"logging.max_age_days must not be negative, got %d", cfg.Logging.MaxAgeDays)
	}

	if cfg.Output.DirPrefix == "" {
		return errors.Wrap(errors.ErrConfigInvalid,
			"output.dir_prefix must not be empty")
	}
	if cfg.Output.MaxCollisionSuffix < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"output.max_collision_suffix must be at least 1, got %d", cfg.Output.MaxCollisionSuffix)
	}

	if cfg.Data.Regions < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"data.regions must be positive, got %d", cfg.Data.Regions)
	}
	if cfg.Data.AtlasPath == "" || cfg.Data.ExpressionPath == "" || cfg.Data.LabelsPath == "" {
		return errors.Wrap(errors.ErrConfigInvalid,
			"data file locations must not be empty")
	}

	if cfg.Analysis.MaxComponents < 1 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"analysis.max_components must be positive, got %d", cfg.Analysis.MaxComponents)
	}

	return nil
}
