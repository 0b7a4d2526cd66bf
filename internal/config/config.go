// Package config resolves todo's configuration from defaults, JSONC config
// files, the environment and command line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"go.uber.org/zap/zapcore"

	"github.com/calvinalkan/todo/internal/kv"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir          string `json:"data_dir"`
	Backend          string `json:"backend,omitempty"`
	Key              string `json:"key,omitempty"`
	Locale           string `json:"locale,omitempty"`
	LogLevel         string `json:"log_level,omitempty"`
	SearchDebounceMS int    `json:"search_debounce_ms,omitempty"`
	NotifyTTLMS      int    `json:"notify_ttl_ms,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"`
	DataDirAbs   string `json:"-"`

	Sources Sources `json:"-"`
}

// Sources tracks where configuration came from.
type Sources struct {
	Global  string   // Path to global config if loaded
	Project string   // Path to project or explicit config if loaded
	DotEnv  string   // Path to .env if loaded
	Env     []string // Environment variables that overrode file values
}

// Errors returned by [Load].
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data-dir cannot be empty")
	ErrInvalidValue       = errors.New("invalid config value")
)

// FileName is the project config file name.
const FileName = ".todo.json"

// DotEnvFileName is read from the working directory when present.
const DotEnvFileName = ".env"

// Environment variables consulted by [Load].
const (
	EnvDataDir  = "TODO_DATA_DIR"
	EnvBackend  = "TODO_BACKEND"
	EnvKey      = "TODO_KEY"
	EnvLocale   = "TODO_LOCALE"
	EnvLogLevel = "TODO_LOG_LEVEL"
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		DataDir:          ".todo",
		Backend:          kv.BackendFile,
		Key:              "tasks",
		Locale:           "en",
		LogLevel:         "warn",
		SearchDebounceMS: 250,
		NotifyTTLMS:      3000,
	}
}

// SearchDebounce returns the search quiet period.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

// NotifyTTL returns how long notifications stay visible.
func (c Config) NotifyTTL() time.Duration {
	return time.Duration(c.NotifyTTLMS) * time.Millisecond
}

// Overrides are values from command line flags. Empty fields are ignored.
type Overrides struct {
	DataDir string
	Backend string
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Overrides         // CLI overrides
	Env             map[string]string // process environment
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/todo/config.json or ~/.config/todo/config.json)
//  3. Project config (.todo.json) or the explicit file given by ConfigPath
//  4. Environment variables (TODO_*), with .env in the work dir filling
//     variables the process environment does not set
//  5. CLI overrides
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalCfg, globalPath, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	env, dotEnvPath, err := withDotEnv(workDir, input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.DotEnv = dotEnvPath
	cfg = applyEnv(cfg, env)

	if input.Overrides.DataDir != "" {
		cfg.DataDir = input.Overrides.DataDir
	}

	if input.Overrides.Backend != "" {
		cfg.Backend = input.Overrides.Backend
	}

	err = validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataDir) {
		cfg.DataDirAbs = cfg.DataDir
	} else {
		cfg.DataDirAbs = filepath.Join(workDir, cfg.DataDir)
	}

	return cfg, nil
}

// globalPath returns $XDG_CONFIG_HOME/todo/config.json or
// ~/.config/todo/config.json, or "" if neither variable is set.
func globalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "todo", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "todo", "config.json")
	}

	return ""
}

func loadGlobal(env map[string]string) (Config, string, error) {
	path := globalPath(env)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, explicitEmpty, loaded, err := loadFile(path, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["data_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataDirEmpty)
	}

	return cfg, path, nil
}

func loadProject(workDir, configPath string) (Config, string, error) {
	var path string

	var mustExist bool

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		path = filepath.Join(workDir, FileName)
	}

	cfg, explicitEmpty, loaded, err := loadFile(path, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["data_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataDirEmpty)
	}

	return cfg, path, nil
}

// loadFile reads a config file. Missing files are only an error if mustExist.
// Returns the config, the fields explicitly set to "", and whether the file
// was loaded.
func loadFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, err := parse(data)
	if err != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, explicitEmpty, true, nil
}

func parse(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["data_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["data_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

// withDotEnv returns env extended by variables from <workDir>/.env that env
// does not already define.
func withDotEnv(workDir string, env map[string]string) (map[string]string, string, error) {
	path := filepath.Join(workDir, DotEnvFileName)

	fileEnv, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env, "", nil
		}

		return nil, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	merged := make(map[string]string, len(env)+len(fileEnv))

	for k, v := range fileEnv {
		merged[k] = v
	}

	for k, v := range env {
		merged[k] = v
	}

	return merged, path, nil
}

func applyEnv(cfg Config, env map[string]string) Config {
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(env[name]); v != "" {
			*dst = v
			cfg.Sources.Env = append(cfg.Sources.Env, name)
		}
	}

	set(EnvDataDir, &cfg.DataDir)
	set(EnvBackend, &cfg.Backend)
	set(EnvKey, &cfg.Key)
	set(EnvLocale, &cfg.Locale)
	set(EnvLogLevel, &cfg.LogLevel)

	return cfg
}

func merge(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}

	if overlay.Key != "" {
		base.Key = overlay.Key
	}

	if overlay.Locale != "" {
		base.Locale = overlay.Locale
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.SearchDebounceMS != 0 {
		base.SearchDebounceMS = overlay.SearchDebounceMS
	}

	if overlay.NotifyTTLMS != 0 {
		base.NotifyTTLMS = overlay.NotifyTTLMS
	}

	return base
}

func validate(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrDataDirEmpty
	}

	if !slices.Contains(kv.Backends(), cfg.Backend) {
		return fmt.Errorf("%w: backend %q (want one of %s)", ErrInvalidValue, cfg.Backend, strings.Join(kv.Backends(), ", "))
	}

	if cfg.Key == "" || strings.ContainsAny(cfg.Key, `/\`) || strings.HasPrefix(cfg.Key, ".") {
		return fmt.Errorf("%w: key %q", ErrInvalidValue, cfg.Key)
	}

	_, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidValue, cfg.LogLevel)
	}

	if cfg.SearchDebounceMS < 0 {
		return fmt.Errorf("%w: search_debounce_ms must be >= 0, got %d", ErrInvalidValue, cfg.SearchDebounceMS)
	}

	if cfg.NotifyTTLMS < 0 {
		return fmt.Errorf("%w: notify_ttl_ms must be >= 0, got %d", ErrInvalidValue, cfg.NotifyTTLMS)
	}

	return nil
}

// Format renders cfg as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}
