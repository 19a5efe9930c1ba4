package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/persistence"
	"lsmkv/pkg/store"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// Config is the root configuration of the application.
type Config struct {
	Logger  LoggerConfig  `yaml:"logger" validate:"required"`
	Storage StorageConfig `yaml:"storage" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,slog_level"`
	JSON  bool   `yaml:"json"`
}

type StorageConfig struct {
	Path           string        `yaml:"path" validate:"required"`
	FlushThreshold int64         `yaml:"flush_threshold" validate:"required,min=1"`
	Segment        SegmentConfig `yaml:"segment" validate:"required"`
}

// SegmentConfig controls segment file names: <prefix>_<serial>.<ext>.
type SegmentConfig struct {
	Prefix string `yaml:"prefix" validate:"required,excludes=_,no_path_sep"`
	Ext    string `yaml:"ext" validate:"required,excludes=.,no_path_sep"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slog_level", func(fl validator.FieldLevel) bool {
		var level slog.Level
		return level.UnmarshalText([]byte(fl.Field().String())) == nil
	})
	_ = v.RegisterValidation("no_path_sep", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), `/\`)
	})
	return v
}

// check runs the tag rules on v and reports the first violation.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s %q fails %q: %w", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag(), dberrors.ErrInvalidArgument)
	}
	return fmt.Errorf("%w: %w", dberrors.ErrInvalidArgument, err)
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "info",
			JSON:  false,
		},
		Storage: StorageConfig{
			Path:           "./data",
			FlushThreshold: 1 << 20,
			Segment: SegmentConfig{
				Prefix: "sstable",
				Ext:    "sst",
			},
		},
	}
}

// Load reads a YAML config on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("config file not found, using default config", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	return check(c)
}

// SlogLevel parses Level, accepting any case.
func (l LoggerConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("logger level %q: %w", l.Level, dberrors.ErrInvalidArgument)
	}
	return level, nil
}

func (s StorageConfig) Validate() error {
	return check(s)
}

// Options converts the storage section into engine options.
func (s StorageConfig) Options() store.Options {
	return store.Options{
		Dir:            s.Path,
		FlushThreshold: s.FlushThreshold,
		Naming: persistence.Naming{
			Prefix: s.Segment.Prefix,
			Ext:    s.Segment.Ext,
		},
	}
}
