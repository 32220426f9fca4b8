// Package config holds the immutable settings of a monitoring run.
package config

import (
	"os"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/c2h5oh/datasize"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInterval        = time.Second
	DefaultQueryTimeout    = 10 * time.Second
	DefaultTimestampFormat = "20060102-15H_04M_05S"
	DefaultOutputDir       = "."
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultLogMaxSize      = "100MB"
	DefaultLogMaxBackups   = 3
)

type (
	Config struct {
		// Interval is the pause between two snapshots. Zero polls back to back.
		Interval time.Duration `yaml:"interval" validate:"gte=0"`
		// QueryTimeout bounds one snapshot. Zero disables the bound.
		QueryTimeout    time.Duration `yaml:"query_timeout" validate:"gte=0"`
		TimestampFormat string        `yaml:"timestamp_format" validate:"required"`
		OutputDir       string        `yaml:"output_dir" validate:"required"`
		Plots           bool          `yaml:"plots"`
		// ExportDB is an sqlite file recreated for every run. Empty disables export.
		ExportDB string    `yaml:"export_db"`
		Log      LogConfig `yaml:"log"`
	}

	LogConfig struct {
		Level      string `yaml:"level" validate:"loglevel"`
		Format     string `yaml:"format" validate:"oneof=console json"`
		File       string `yaml:"file"`
		MaxSize    string `yaml:"max_size" validate:"datasize"`
		MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	}
)

func Default() Config {
	return Config{
		Interval:        DefaultInterval,
		QueryTimeout:    DefaultQueryTimeout,
		TimestampFormat: DefaultTimestampFormat,
		OutputDir:       DefaultOutputDir,
		Plots:           true,
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "os.ReadFile()")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "yaml.Unmarshal()")
	}
	return cfg, nil
}

// MaxSizeMB is the log rotation threshold in whole megabytes, at least 1.
func (l LogConfig) MaxSizeMB() int {
	var size datasize.ByteSize
	if err := size.UnmarshalText([]byte(l.MaxSize)); err != nil {
		return 100
	}
	if mb := int(size.MBytes()); mb > 0 {
		return mb
	}
	return 1
}

var customValidations = map[string]validator.Func{
	"loglevel": func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
			return true
		default:
			return false
		}
	},
	"datasize": func(fl validator.FieldLevel) bool {
		var size datasize.ByteSize
		return size.UnmarshalText([]byte(fl.Field().String())) == nil
	},
}

func registerValidations(validate *validator.Validate, funcs map[string]validator.Func) error {
	for tag, fn := range funcs {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return errors.Wrapf(err, "validate.RegisterValidation(%q)", tag)
		}
	}
	return nil
}

// Validate checks every field and returns all violations at once.
func (c Config) Validate() error {
	validate := validator.New()

	if err := registerValidations(validate, customValidations); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, "validate config")
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Namespace()+" fails "+fe.Tag())
		}
		return errors.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
