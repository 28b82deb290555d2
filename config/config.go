// Package config handles lpu.toml toolchain configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/lpu/isa"
	"github.com/ezrec/lpu/translate"
)

var f = translate.From

var (
	ErrRegisters = errors.New(f("machine registers must be 8 or 32"))
	ErrStepLimit = errors.New(f("machine step_limit must not be negative"))
	ErrTimeout   = errors.New(f("backend timeout must not be negative"))
)

// ErrUnknownKeys lists configuration keys that are not understood.
type ErrUnknownKeys []string

func (err ErrUnknownKeys) Error() string {
	return f("unknown configuration keys: %v", strings.Join(err, ", "))
}

// ErrEnvironment is an unparsable environment override.
type ErrEnvironment struct {
	Name string
	Err  error
}

func (err *ErrEnvironment) Error() string {
	return f("environment %v: %v", err.Name, err.Err)
}

func (err *ErrEnvironment) Unwrap() error {
	return err.Err
}

// Config is the lpu.toml configuration.
type Config struct {
	Build   Build   `toml:"build"`
	Machine Machine `toml:"machine"`
	Backend Backend `toml:"backend"`
	Cache   Cache   `toml:"cache"`
	Files   Files   `toml:"files"`
}

// Build configures the assembler.
type Build struct {
	Verbose bool   `toml:"verbose"`
	Output  string `toml:"output"` // Directory of built images.
}

// Machine configures the virtual machine.
type Machine struct {
	Registers int  `toml:"registers"`
	Verbose   bool `toml:"verbose"`
	StepLimit int  `toml:"step_limit"` // Zero is unlimited.
}

// Backend configures the semantic backend client.
type Backend struct {
	URL            string        `toml:"url"`
	TextModel      string        `toml:"text_model"`
	EmbeddingModel string        `toml:"embedding_model"`
	APIKeyEnv      string        `toml:"api_key_env"` // Environment variable holding the bearer token.
	Timeout        time.Duration `toml:"timeout"`
	Temperature    float64       `toml:"temperature"`
	SystemPrompt   string        `toml:"system_prompt"`
}

// APIKey returns the bearer token from the environment.
func (b Backend) APIKey() string {
	if len(b.APIKeyEnv) == 0 {
		return ""
	}
	return os.Getenv(b.APIKeyEnv)
}

// Cache configures the semantic result cache.
type Cache struct {
	Path string `toml:"path"` // Empty disables the cache.
}

// Files configures the LF file collaborator.
type Files struct {
	Root string `toml:"root"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Build: Build{
			Output: "build",
		},
		Machine: Machine{
			Registers: isa.DEFAULT_REGISTERS,
		},
		Backend: Backend{
			URL:            "http://127.0.0.1:8080",
			TextModel:      "LFM2-2.6B-Q5_K_M.gguf",
			EmbeddingModel: "Qwen3-Embedding-0.6B-Q4_1-imat.gguf",
			APIKeyEnv:      "LPU_API_KEY",
			Timeout:        2 * time.Minute,
			Temperature:    0.3,
		},
		Files: Files{
			Root: ".",
		},
	}
}

// Load reads a configuration file over the defaults, then applies the
// environment overrides. A missing file yields the defaults.
func Load(path string) (cfg *Config, err error) {
	cfg = Default()

	if len(path) != 0 {
		var md toml.MetaData
		md, err = toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			err = nil
		case err != nil:
			cfg = nil
			return
		default:
			if undecoded := md.Undecoded(); len(undecoded) != 0 {
				var keys ErrUnknownKeys
				for _, key := range undecoded {
					keys = append(keys, key.String())
				}
				cfg = nil
				err = keys
				return
			}
		}
	}

	err = cfg.applyEnvironment(os.LookupEnv)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		cfg = nil
	}

	return
}

// applyEnvironment applies TEXT_MODEL, EMBEDDING_MODEL, LPU_BACKEND_URL,
// DEBUG_BUILD and DEBUG_RUN.
func (cfg *Config) applyEnvironment(lookup func(string) (string, bool)) (err error) {
	if value, ok := lookup("TEXT_MODEL"); ok && len(value) != 0 {
		cfg.Backend.TextModel = value
	}
	if value, ok := lookup("EMBEDDING_MODEL"); ok && len(value) != 0 {
		cfg.Backend.EmbeddingModel = value
	}
	if value, ok := lookup("LPU_BACKEND_URL"); ok && len(value) != 0 {
		cfg.Backend.URL = value
	}

	flags := []struct {
		name  string
		value *bool
	}{
		{"DEBUG_BUILD", &cfg.Build.Verbose},
		{"DEBUG_RUN", &cfg.Machine.Verbose},
	}
	for _, flag := range flags {
		value, ok := lookup(flag.name)
		if !ok || len(value) == 0 {
			continue
		}
		*flag.value, err = strconv.ParseBool(value)
		if err != nil {
			err = &ErrEnvironment{Name: flag.name, Err: err}
			return
		}
	}

	return
}

// Validate checks the configuration values.
func (cfg *Config) Validate() (err error) {
	if !isa.ValidRegisters(cfg.Machine.Registers) {
		return ErrRegisters
	}
	if cfg.Machine.StepLimit < 0 {
		return ErrStepLimit
	}
	if cfg.Backend.Timeout < 0 {
		return ErrTimeout
	}
	return
}
