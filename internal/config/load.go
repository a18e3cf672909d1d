package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/matteofrigo/imaging-transcriptomics/internal/errors"
)

// ConfigFileName is the name of the optional config file in $IMGTX_HOME.
const ConfigFileName = "config.yaml"

// homeDirName is the default home directory under the user's home.
const homeDirName = ".imgtx"

// homeEnvVar overrides the home directory location.
const homeEnvVar = "IMGTX_HOME"

// Home returns the pipeline home directory path.
// If the IMGTX_HOME environment variable is set, it uses that.
// Otherwise, it defaults to ~/.imgtx.
func Home() (string, error) {
	if home := os.Getenv(homeEnvVar); home != "" {
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(userHome, homeDirName), nil
}

// DataDir returns the directory holding the bundled reference datasets.
func DataDir() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "data"), nil
}

// ResolveDataPath resolves a data file setting against the data directory.
// Absolute paths are returned unchanged.
func ResolveDataPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p), nil
}

// newViperInstance creates a new Viper instance with standard pipeline
// configuration: environment variable prefix (IMGTX_), key replacer, and
// defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("IMGTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers DefaultConfig values on the viper instance so they
// survive partial config files.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", def.Logging.Compress)
	v.SetDefault("output.dir_prefix", def.Output.DirPrefix)
	v.SetDefault("output.max_collision_suffix", def.Output.MaxCollisionSuffix)
	v.SetDefault("data.atlas_path", def.Data.AtlasPath)
	v.SetDefault("data.expression_path", def.Data.ExpressionPath)
	v.SetDefault("data.labels_path", def.Data.LabelsPath)
	v.SetDefault("data.regions", def.Data.Regions)
	v.SetDefault("analysis.max_components", def.Analysis.MaxComponents)
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error. Missing config files are expected and not an error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Load reads configuration from all available sources with proper
// precedence: environment variables (IMGTX_*), then the home config file,
// then built-in defaults.
//
// The function returns an error only for actual configuration problems,
// not for a missing config file (which is the common case).
func Load() (*Config, error) {
	v := newViperInstance()

	home, err := Home()
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(filepath.Join(home, ConfigFileName))
	if err := v.ReadInConfig(); err != nil {
		if !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	return unmarshalAndValidate(v)
}

// LoadFromFile reads configuration from an explicit file path layered over
// the built-in defaults. Intended for tests and non-standard layouts.
func LoadFromFile(path string) (*Config, error) {
	v := newViperInstance()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return unmarshalAndValidate(v)
}

// unmarshalAndValidate unmarshals viper config into a Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
