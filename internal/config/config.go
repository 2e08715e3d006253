// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete docchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Service ServiceConfig `toml:"service" json:"service"`
	Query   QueryConfig   `toml:"query" json:"query"`
	Upload  UploadConfig  `toml:"upload" json:"upload"`
	History HistoryConfig `toml:"history" json:"history"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// ServiceConfig locates the answering service.
type ServiceConfig struct {
	// BaseURL of the service (default: http://127.0.0.1:8000)
	BaseURL string `toml:"base_url" json:"base_url"`

	// TimeoutSecs bounds ordinary requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// UploadTimeoutSecs bounds uploads, which include ingestion
	UploadTimeoutSecs int `toml:"upload_timeout_secs" json:"upload_timeout_secs"`

	// RequestsPerSecond caps outbound requests; Burst is the bucket size
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `toml:"burst" json:"burst"`

	// ImageRoot prefixes image directive paths (default: BaseURL)
	ImageRoot string `toml:"image_root" json:"image_root"`
}

// QueryConfig holds per-question settings.
type QueryConfig struct {
	// Mode is auto, text, table or both
	Mode string `toml:"mode" json:"mode"`

	// TopK is the number of passages retrieved per question
	TopK int `toml:"top_k" json:"top_k"`
}

// UploadConfig holds settings sent with uploads.
type UploadConfig struct {
	DocType string `toml:"doc_type" json:"doc_type"`
	UseOCR  bool   `toml:"use_ocr" json:"use_ocr"`
}

// HistoryConfig controls the history panel.
type HistoryConfig struct {
	Limit int `toml:"limit" json:"limit"`
}

// UIConfig controls the terminal surface.
type UIConfig struct {
	// Theme is auto, dark or light
	Theme          string `toml:"theme" json:"theme"`
	WordWrap       bool   `toml:"word_wrap" json:"word_wrap"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Debug bool `toml:"debug" json:"debug"`

	// File receives logs while the TUI runs (default: ~/.docchat/debug.log)
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Service: ServiceConfig{
			BaseURL:           "http://127.0.0.1:8000",
			TimeoutSecs:       60,
			UploadTimeoutSecs: 600,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Query: QueryConfig{
			Mode: service.ModeAuto,
			TopK: 5,
		},
		Upload: UploadConfig{
			DocType: service.DefaultDocType,
			UseOCR:  true,
		},
		History: HistoryConfig{Limit: 50},
		UI: UIConfig{
			Theme:          styles.ThemeAuto,
			WordWrap:       true,
			ShowTimestamps: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the docchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".docchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the file Load reads: the TOML file if it exists, else
// the JSON file if it exists, else the TOML path.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// LogFile returns the debug log location.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	dir, err := ConfigDir()
	if err != nil {
		return "docchat-debug.log"
	}
	return filepath.Join(dir, "debug.log")
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last. A file that fails to decode is
// reported alongside the defaults.
func Load() (*Config, error) {
	var loadErr error

	for _, locate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := locate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		var verr ValidateErrors
		if errors.As(err, &verr) {
			return nil, err
		}
		loadErr = err
		break
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies env overrides, migration, defaults and validation.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return fmt.Errorf("config migration failed: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# docchat configuration file\n")
	buf.WriteString("# Environment variables DOCCHAT_URL, DOCCHAT_MODE, DOCCHAT_TOP_K,\n")
	buf.WriteString("# DOCCHAT_THEME, DOCCHAT_DEBUG and DOCCHAT_LOG_FILE override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg to path with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Service.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("invalid URL %q, expected e.g. http://127.0.0.1:8000", c.Service.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	}
	if c.Service.TimeoutSecs < 1 || c.Service.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "service.timeout_secs",
			Message: fmt.Sprintf("must be 1-3600, got %d", c.Service.TimeoutSecs),
		})
	}
	if c.Service.UploadTimeoutSecs < c.Service.TimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "service.upload_timeout_secs",
			Message: fmt.Sprintf("must be at least timeout_secs (%d), got %d", c.Service.TimeoutSecs, c.Service.UploadTimeoutSecs),
		})
	}
	if c.Service.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "service.requests_per_second",
			Message: "cannot be negative",
		})
	}

	if !service.ValidMode(c.Query.Mode) {
		errs = append(errs, ValidationError{
			Field:   "query.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: %s", c.Query.Mode, strings.Join(service.Modes, ", ")),
		})
	}
	if c.Query.TopK < 1 || c.Query.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "query.top_k",
			Message: fmt.Sprintf("must be 1-100, got %d", c.Query.TopK),
		})
	}

	if c.History.Limit < 1 || c.History.Limit > 1000 {
		errs = append(errs, ValidationError{
			Field:   "history.limit",
			Message: fmt.Sprintf("must be 1-1000, got %d", c.History.Limit),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case styles.ThemeAuto, styles.ThemeDark, styles.ThemeLight:
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have no meaning with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = defaults.Service.BaseURL
	}
	if c.Service.TimeoutSecs == 0 {
		c.Service.TimeoutSecs = defaults.Service.TimeoutSecs
	}
	if c.Service.UploadTimeoutSecs == 0 {
		c.Service.UploadTimeoutSecs = defaults.Service.UploadTimeoutSecs
	}
	if c.Service.Burst <= 0 {
		c.Service.Burst = defaults.Service.Burst
	}
	if c.Query.Mode == "" {
		c.Query.Mode = defaults.Query.Mode
	}
	if c.Query.TopK == 0 {
		c.Query.TopK = defaults.Query.TopK
	}
	if c.Upload.DocType == "" {
		c.Upload.DocType = defaults.Upload.DocType
	}
	if c.History.Limit == 0 {
		c.History.Limit = defaults.History.Limit
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Migrate normalizes older spellings.
func (c *Config) Migrate() error {
	c.Query.Mode = strings.ToLower(strings.TrimSpace(c.Query.Mode))
	switch c.Query.Mode {
	case "tables":
		c.Query.Mode = service.ModeTable
	case "all":
		c.Query.Mode = service.ModeBoth
	}
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DOCCHAT_URL: overrides service.base_url
//   - DOCCHAT_MODE: overrides query.mode
//   - DOCCHAT_TOP_K: overrides query.top_k
//   - DOCCHAT_THEME: overrides ui.theme
//   - DOCCHAT_DEBUG: set to "1" or "true" to enable debug logging
//   - DOCCHAT_LOG_FILE: overrides log.file
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("DOCCHAT_URL"); u != "" {
		c.Service.BaseURL = u
	}
	if mode := os.Getenv("DOCCHAT_MODE"); mode != "" {
		c.Query.Mode = mode
	}
	if topK := os.Getenv("DOCCHAT_TOP_K"); topK != "" {
		if n, err := strconv.Atoi(topK); err == nil {
			c.Query.TopK = n
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring DOCCHAT_TOP_K=%q: not a number\n", topK)
		}
	}
	if theme := os.Getenv("DOCCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if debug := os.Getenv("DOCCHAT_DEBUG"); debug != "" {
		c.Log.Debug = debug == "1" || strings.ToLower(debug) == "true"
	}
	if file := os.Getenv("DOCCHAT_LOG_FILE"); file != "" {
		c.Log.File = file
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// ClientConfig returns the service client settings.
func (c *Config) ClientConfig() *service.ClientConfig {
	return &service.ClientConfig{
		BaseURL:           c.Service.BaseURL,
		Timeout:           time.Duration(c.Service.TimeoutSecs) * time.Second,
		UploadTimeout:     time.Duration(c.Service.UploadTimeoutSecs) * time.Second,
		RequestsPerSecond: c.Service.RequestsPerSecond,
		Burst:             c.Service.Burst,
	}
}

// SubmitConfig returns the submission settings.
func (c *Config) SubmitConfig() submit.Config {
	return submit.Config{
		TopK:    c.Query.TopK,
		DocType: c.Upload.DocType,
		UseOCR:  c.Upload.UseOCR,
	}
}

// ImageRoot returns the prefix for image directive paths.
func (c *Config) ImageRoot() string {
	if c.Service.ImageRoot != "" {
		return c.Service.ImageRoot
	}
	return c.Service.BaseURL
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "query.top_k").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.field(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "query.top_k").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) field(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"service.base_url",
		"service.timeout_secs",
		"service.upload_timeout_secs",
		"service.requests_per_second",
		"service.burst",
		"service.image_root",
		"query.mode",
		"query.top_k",
		"upload.doc_type",
		"upload.use_ocr",
		"history.limit",
		"ui.theme",
		"ui.word_wrap",
		"ui.show_timestamps",
		"log.debug",
		"log.file",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
