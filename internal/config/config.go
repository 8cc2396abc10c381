package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/bind"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vbind.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 7070

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultPushInterval is the default delay between preview pushes.
	DefaultPushInterval = "50ms"

	// DefaultSnapshotDir is the default directory for disk snapshots.
	DefaultSnapshotDir = "snapshots"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config represents the complete vbind.json configuration.
type Config struct {
	// RootPath is the base that relative href and src values are resolved
	// against.
	RootPath string `json:"rootPath,omitempty"`

	// Timezone is the IANA name used for datetime-local and week
	// controls. Empty or "Local" means the process time zone.
	Timezone string `json:"timezone,omitempty"`

	// Validation configures numeric input checks.
	Validation ValidationConfig `json:"validation,omitempty"`

	// Preview contains preview server configuration.
	Preview PreviewConfig `json:"preview,omitempty"`

	// Snapshot contains snapshot storage configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"logLevel,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ValidationConfig holds the rules for decimal and integer references.
type ValidationConfig struct {
	Number RuleConfig `json:"number,omitempty"`
	BigInt RuleConfig `json:"bigint,omitempty"`
}

// RuleConfig is one numeric validation rule. A nil Enabled means enabled.
type RuleConfig struct {
	// Message is the custom validity message shown for bad input.
	Message string `json:"message,omitempty"`

	// Enabled turns the check on or off.
	Enabled *bool `json:"enabled,omitempty"`
}

// IsEnabled reports whether the rule is on.
func (r RuleConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// PushInterval is the minimum delay between pushes (e.g., "50ms").
	PushInterval string `json:"pushInterval,omitempty"`
}

// SnapshotConfig selects where snapshots are written. A non-empty Bucket
// selects S3, otherwise Dir is used.
type SnapshotConfig struct {
	// Dir is the directory for disk snapshots.
	Dir string `json:"dir,omitempty"`

	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to S3 object keys.
	Prefix string `json:"prefix,omitempty"`

	// Region overrides the AWS region from the environment.
	Region string `json:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Timezone: "Local",
		Validation: ValidationConfig{
			Number: RuleConfig{Message: errors.Message("V001")},
			BigInt: RuleConfig{Message: errors.Message("V002")},
		},
		Preview: PreviewConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			PushInterval: DefaultPushInterval,
		},
		Snapshot: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from the specified directory.
// It looks for vbind.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C002").
				WithDetail("No vbind.json found in " + filepath.Dir(path)).
				WithSuggestion("Create vbind.json or run without --config to use the defaults")
		}
		return nil, errors.New("C001").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		ce := errors.New("C001").
			WithDetail("Failed to parse vbind.json: " + err.Error()).
			WithSuggestion("Check that vbind.json is valid JSON")
		if offset, ok := errorOffset(err); ok {
			line, col := position(data, offset)
			ce = ce.WithLocation(path, line, col)
		}
		return nil, ce
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C001").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C001").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// errorOffset returns the byte offset a JSON decoding error points at.
func errorOffset(err error) (int64, bool) {
	switch e := err.(type) {
	case *json.SyntaxError:
		return e.Offset, true
	case *json.UnmarshalTypeError:
		return e.Offset, true
	}
	return 0, false
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, c := range data[:offset] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Validation.Number.Message == "" {
		c.Validation.Number.Message = errors.Message("V001")
	}
	if c.Validation.BigInt.Message == "" {
		c.Validation.BigInt.Message = errors.Message("V002")
	}

	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Preview.PushInterval == "" {
		c.Preview.PushInterval = DefaultPushInterval
	}

	if c.Snapshot.Dir == "" && c.Snapshot.Bucket == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("C003").
			WithDetailf("Port %d must be between 0 and 65535", c.Preview.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.PushInterval(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.New("C004").
			WithDetailf("%q is not a known time zone", c.Timezone).
			Wrap(err)
	}
	return loc, nil
}

// PushInterval parses Preview.PushInterval.
func (c *Config) PushInterval() (time.Duration, error) {
	s := c.Preview.PushInterval
	if s == "" {
		s = DefaultPushInterval
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("C001").
			WithDetailf("preview.pushInterval %q must be a positive duration", s)
	}
	return d, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	s := c.LogLevel
	if s == "" {
		s = DefaultLogLevel
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, errors.New("C001").
			WithDetailf("logLevel %q must be debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}

// PreviewAddress returns the host:port the preview server listens on.
func (c *Config) PreviewAddress() string {
	return net.JoinHostPort(c.Preview.Host, strconv.Itoa(c.Preview.Port))
}

// PreviewURL returns the browser URL of the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// SnapshotPath returns the absolute path to the snapshot directory.
func (c *Config) SnapshotPath() string {
	path := c.Snapshot.Dir
	if path == "" {
		path = DefaultSnapshotDir
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// ValidationPolicy converts the validation section for the binder.
func (c *Config) ValidationPolicy() bind.ValidationPolicy {
	return bind.ValidationPolicy{
		Number:  bind.Rule{Message: c.Validation.Number.Message, Enabled: c.Validation.Number.IsEnabled()},
		Integer: bind.Rule{Message: c.Validation.BigInt.Message, Enabled: c.Validation.BigInt.IsEnabled()},
	}
}

// BinderOptions returns the binder options described by the
// configuration. Call Validate first; an unknown time zone falls back to
// the process zone here.
func (c *Config) BinderOptions(logger *slog.Logger) []bind.Option {
	opts := []bind.Option{
		bind.WithValidation(c.ValidationPolicy()),
		bind.WithRootPath(c.RootPath),
	}
	if loc, err := c.Location(); err == nil {
		opts = append(opts, bind.WithLocation(loc))
	}
	if logger != nil {
		opts = append(opts, bind.WithLogger(logger))
	}
	return opts
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vbind.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C002").
				WithDetail("No vbind.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest vbind.json at or
// above the working directory. When none exists the defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}
