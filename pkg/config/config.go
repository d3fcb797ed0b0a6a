// Package config handles objmodel.toml runtime configuration.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"objmodel/pkg/errors"
	"objmodel/pkg/source"
	"objmodel/pkg/vm"
)

// Config is the root of an objmodel.toml file.
type Config struct {
	Arrays Arrays `toml:"arrays"`
	Calls  Calls  `toml:"calls"`
	Heap   Heap   `toml:"heap"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Arrays tunes element storage.
type Arrays struct {
	DenseGapLimit  uint32 `toml:"dense_gap_limit"`
	MaxDenseLength uint32 `toml:"max_dense_length"`
}

// Calls bounds function invocation.
type Calls struct {
	MaxArguments int `toml:"max_arguments"`
}

// Heap bounds the object arena.
type Heap struct {
	MaxObjects int `toml:"max_objects"` // 0 = unlimited
}

// Log configures the realm logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Arrays: Arrays{
			DenseGapLimit:  vm.DefaultDenseGapLimit,
			MaxDenseLength: vm.DefaultMaxDenseLength,
		},
		Calls: Calls{MaxArguments: vm.DefaultMaxArguments},
		Log:   Log{Level: "info", Format: "console"},
	}
}

// Load reads and validates a configuration file. Keys absent from the file
// keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, (&errors.ConfigError{Path: path, Msg: "cannot read file"}).CausedBy(err)
	}
	cfg, err := parse(source.FromFile(path, string(data)))
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes configuration text without a backing file.
func Parse(data string) (Config, error) {
	return parse(source.InMemory("config", data))
}

func parse(src *source.SourceFile) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(src.Content, &cfg)
	if err != nil {
		cerr := &errors.ConfigError{Path: src.DisplayPath(), Msg: err.Error(), Cause: err}
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			cerr.Msg = perr.Message
			cerr.Position = errors.Position{Line: perr.Position.Line, Column: perr.Position.Col, Source: src}
		}
		return Config{}, cerr
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, &errors.ConfigError{
			Path: src.DisplayPath(),
			Msg:  "unknown keys: " + strings.Join(keys, ", "),
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return &errors.ConfigError{Path: c.Path, Msg: fmt.Sprintf(format, args...)}
	}
	if c.Arrays.DenseGapLimit == 0 {
		return fail("arrays.dense_gap_limit must be positive")
	}
	if c.Arrays.MaxDenseLength < c.Arrays.DenseGapLimit {
		return fail("arrays.max_dense_length (%d) must be at least arrays.dense_gap_limit (%d)",
			c.Arrays.MaxDenseLength, c.Arrays.DenseGapLimit)
	}
	if c.Calls.MaxArguments <= 0 {
		return fail("calls.max_arguments must be positive")
	}
	if c.Heap.MaxObjects < 0 {
		return fail("heap.max_objects must not be negative")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fail("log.level %q: %v", c.Log.Level, err)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fail("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// Logger builds the configured logger writing to w.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Log.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// RealmOptions maps the configuration onto realm options.
func (c Config) RealmOptions(log zerolog.Logger) vm.Options {
	return vm.Options{
		DenseGapLimit:  c.Arrays.DenseGapLimit,
		MaxDenseLength: c.Arrays.MaxDenseLength,
		MaxArguments:   c.Calls.MaxArguments,
		MaxObjects:     c.Heap.MaxObjects,
		Logger:         log,
	}
}
