package config

import (
	"github.com/spf13/viper"

	"github.com/kochabx/fetchapi/log"
)

// DefaultFile is looked up in the working directory when no file is given
const DefaultFile = "fetchapi.yaml"

// Settings is the configuration of the fetchapi command and of dispatchers built from it
type Settings struct {
	Server ServerSettings `json:"server" mapstructure:"server"`
	Log    log.Config     `json:"log" mapstructure:"log"`
}

// ServerSettings locates the remote API
type ServerSettings struct {
	// URL is the base URL every endpoint is appended to.
	URL string `json:"url" mapstructure:"url" validate:"required,url"`
}

// LoadSettings loads Settings from file, ./.env and the environment.
// An empty file means DefaultFile in the working directory, which may be absent.
//
// Environment variables: SERVER_URL (or REACT_APP_SERVER_URL), LOG_LEVEL, LOG_OUTPUT.
func LoadSettings(file string, opts ...FileLoaderOption) (*Config, *Settings, error) {
	v := viper.New()
	s := new(Settings)

	var paths []string
	loaderOpts := []FileLoaderOption{
		WithDotenv(".env"),
		WithEnv("server.url", "SERVER_URL", "REACT_APP_SERVER_URL"),
		WithEnv("log.level", "LOG_LEVEL"),
		WithEnv("log.output", "LOG_OUTPUT"),
	}
	if file == "" {
		file = DefaultFile
		paths = []string{"."}
		loaderOpts = append(loaderOpts, Optional())
	}
	loaderOpts = append(loaderOpts, opts...)

	c := New(s, WithViper(v))
	c.loader = NewFileLoader(file, paths, v, c.validate, loaderOpts...)

	if err := c.Load(); err != nil {
		return nil, nil, err
	}
	return c, s, nil
}

// BaseURLFunc returns a function reading the current server URL of s under c's lock,
// so reloads made by Watch are observed by the next call.
func BaseURLFunc(c *Config, s *Settings) func() string {
	return func() string {
		var u string
		c.Read(func() {
			u = s.Server.URL
		})
		return u
	}
}
