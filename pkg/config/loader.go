package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type loadOptions struct {
	files       []string
	required    bool
	prefix      string
	environment map[string]string
}

// Option configures Load.
type Option func(*loadOptions)

// WithEnvFiles loads the given files before parsing. Missing files are
// ignored unless WithRequiredFiles is also set. Values already present in the
// process environment win.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.files = append(o.files, files...) }
}

// WithRequiredFiles makes a missing env file an error.
func WithRequiredFiles() Option {
	return func(o *loadOptions) { o.required = true }
}

// WithPrefix prepends prefix to every env tag.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// WithEnvironment parses from m instead of the process environment.
func WithEnvironment(m map[string]string) Option {
	return func(o *loadOptions) { o.environment = m }
}

// Load parses environment variables into a new T using `env` and
// `envDefault` struct tags. By default a .env file in the working directory
// is loaded if present.
//
//	cfg, err := config.Load[AppConfig]()
func Load[T any](opts ...Option) (T, error) {
	o := loadOptions{files: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T

	if o.environment == nil {
		for _, f := range o.files {
			if err := godotenv.Load(f); err != nil {
				if !o.required && errors.Is(err, os.ErrNotExist) {
					continue
				}
				return cfg, errors.Join(ErrEnvFile, fmt.Errorf("%s: %w", f, err))
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
