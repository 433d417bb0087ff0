package config

import (
	"io/fs"
	"path"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kochabx/fetchapi/core/tag"
	"github.com/kochabx/fetchapi/core/validator"
	"github.com/kochabx/fetchapi/errors"
)

// FileLoader loads configuration from a file, .env files and the environment
type FileLoader struct {
	viper    *viper.Viper
	validate validator.Validator
	optional bool
	dotenv   []string
}

// FileLoaderOption configures a FileLoader
type FileLoaderOption func(*FileLoader)

// Optional lets Load succeed when the configuration file does not exist
func Optional() FileLoaderOption {
	return func(l *FileLoader) {
		l.optional = true
	}
}

// WithEnv binds key to the given environment variables, checked in order.
// Bound keys are resolved even when no configuration file mentions them.
func WithEnv(key string, envs ...string) FileLoaderOption {
	return func(l *FileLoader) {
		_ = l.viper.BindEnv(append([]string{key}, envs...)...)
	}
}

// WithDotenv loads the given .env files before reading the configuration.
// Missing files are ignored and variables already set in the process win.
func WithDotenv(files ...string) FileLoaderOption {
	return func(l *FileLoader) {
		l.dotenv = append(l.dotenv, files...)
	}
}

// WithFlags binds keys to command line flags, keyed by configuration key.
// Only flags set on the command line are bound; they take precedence over every other source.
func WithFlags(fs *pflag.FlagSet, bindings map[string]string) FileLoaderOption {
	return func(l *FileLoader) {
		for key, name := range bindings {
			if f := fs.Lookup(name); f != nil && f.Changed {
				_ = l.viper.BindPFlag(key, f)
			}
		}
	}
}

// NewFileLoader creates a file loader. name is searched for in paths; with no paths
// it is used as the file location directly.
func NewFileLoader(name string, paths []string, v *viper.Viper, validate validator.Validator, opts ...FileLoaderOption) *FileLoader {
	if len(paths) == 0 {
		v.SetConfigFile(name)
	} else {
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		v.SetConfigName(name)
	}
	v.SetConfigType(strings.TrimPrefix(path.Ext(name), "."))

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	l := &FileLoader{
		viper:    v,
		validate: validate,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements Loader
func (l *FileLoader) Load(target any) error {
	// defaults first so that keys missing from every source keep them
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Internal("failed to apply defaults: %v", err)
	}

	if len(l.dotenv) > 0 {
		if err := loadDotenv(l.dotenv...); err != nil {
			return errors.Internal("failed to load env file: %v", err)
		}
	}

	if err := l.viper.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return errors.Internal("config parse error: %v", err)
		}
		if !l.optional {
			return errors.NotFound("config file not found: %v", err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.viper.Unmarshal(target, hook); err != nil {
		return errors.Internal("config parse error: %v", err)
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, 400, "config validation failed: %v", err)
		}
	}

	return nil
}

// Watch implements Loader
func (l *FileLoader) Watch(callback func()) error {
	l.viper.OnConfigChange(func(fsnotify.Event) {
		if callback != nil {
			callback()
		}
	})
	l.viper.WatchConfig()
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func loadDotenv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
