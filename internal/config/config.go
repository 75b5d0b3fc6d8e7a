// Package config provides configuration management for the clipmark agent.
// Values come from an optional YAML file, then a .env file, then the process
// environment, later sources overriding earlier ones.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort            = 8787
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".clipmark"
	DefaultBackendOrigin   = "http://localhost:8000"
	DefaultPollInterval    = 100 * time.Millisecond
	DefaultExportTimeout   = 2 * time.Minute
	DefaultPlayer          = PlayerMPV
	DefaultExportRateLimit = 10 // requests per minute

	PlayerMPV       = "mpv"
	PlayerSimulated = "simulated"

	// Environment variable names
	EnvConfigFile      = "CLIPMARK_CONFIG"
	EnvPort            = "CLIPMARK_PORT"
	EnvLogLevel        = "CLIPMARK_LOG_LEVEL"
	EnvDataDir         = "CLIPMARK_DATA_DIR"
	EnvBackendOrigin   = "CLIPMARK_BACKEND_ORIGIN"
	EnvBackendStub     = "CLIPMARK_BACKEND_STUB"
	EnvPollInterval    = "CLIPMARK_POLL_INTERVAL"
	EnvExportTimeout   = "CLIPMARK_EXPORT_TIMEOUT"
	EnvPlayer          = "CLIPMARK_PLAYER"
	EnvMPVPath         = "CLIPMARK_MPV_PATH"
	EnvMPVSocket       = "CLIPMARK_MPV_SOCKET"
	EnvHeadless        = "CLIPMARK_HEADLESS"
	EnvCORSOrigins     = "CLIPMARK_CORS_ORIGINS"
	EnvExportRateLimit = "CLIPMARK_EXPORT_RATE_LIMIT"

	// Database filename
	DBFilename = "clipmark.db"

	mpvSocketName = "mpv.sock"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	BackendOrigin() string
	BackendStub() bool
	PollInterval() time.Duration
	ExportTimeout() time.Duration
	Player() string
	MPVPath() string
	MPVSocket() string
	Headless() bool
	CORSOrigins() []string
	ExportRateLimit() int
}

// FileConfig is the YAML layout of the optional config file.
type FileConfig struct {
	Port            int      `yaml:"port"`
	LogLevel        string   `yaml:"log_level"`
	DataDir         string   `yaml:"data_dir"`
	BackendOrigin   string   `yaml:"backend_origin"`
	BackendStub     *bool    `yaml:"backend_stub"`
	PollInterval    string   `yaml:"poll_interval"`
	ExportTimeout   string   `yaml:"export_timeout"`
	Player          string   `yaml:"player"`
	MPVPath         string   `yaml:"mpv_path"`
	MPVSocket       string   `yaml:"mpv_socket"`
	Headless        *bool    `yaml:"headless"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ExportRateLimit int      `yaml:"export_rate_limit"`
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	backendOrigin   string
	backendStub     bool
	pollInterval    time.Duration
	exportTimeout   time.Duration
	player          string
	mpvPath         string
	mpvSocket       string
	headless        bool
	corsOrigins     []string
	exportRateLimit int
}

// New creates a new EnvConfig with defaults, the optional YAML file named by
// CLIPMARK_CONFIG, a .env file in the working directory and environment
// variable overrides.
func New() (*EnvConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		backendOrigin:   DefaultBackendOrigin,
		pollInterval:    DefaultPollInterval,
		exportTimeout:   DefaultExportTimeout,
		player:          DefaultPlayer,
		exportRateLimit: DefaultExportRateLimit,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile parses a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return &fc, nil
		}
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &fc, nil
}

func (c *EnvConfig) applyFile(fc *FileConfig) error {
	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.BackendOrigin != "" {
		c.backendOrigin = fc.BackendOrigin
	}
	if fc.BackendStub != nil {
		c.backendStub = *fc.BackendStub
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
		c.pollInterval = d
	}
	if fc.ExportTimeout != "" {
		d, err := time.ParseDuration(fc.ExportTimeout)
		if err != nil {
			return fmt.Errorf("invalid export_timeout: %w", err)
		}
		c.exportTimeout = d
	}
	if fc.Player != "" {
		c.player = fc.Player
	}
	if fc.MPVPath != "" {
		c.mpvPath = fc.MPVPath
	}
	if fc.MPVSocket != "" {
		c.mpvSocket = fc.MPVSocket
	}
	if fc.Headless != nil {
		c.headless = *fc.Headless
	}
	if len(fc.CORSOrigins) > 0 {
		c.corsOrigins = fc.CORSOrigins
	}
	if fc.ExportRateLimit != 0 {
		c.exportRateLimit = fc.ExportRateLimit
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		c.dataDir = dd
	}
	if bo := os.Getenv(EnvBackendOrigin); bo != "" {
		c.backendOrigin = bo
	}
	if v := os.Getenv(EnvBackendStub); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBackendStub, err)
		}
		c.backendStub = b
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollInterval, err)
		}
		c.pollInterval = d
	}
	if v := os.Getenv(EnvExportTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExportTimeout, err)
		}
		c.exportTimeout = d
	}
	if v := os.Getenv(EnvPlayer); v != "" {
		c.player = strings.ToLower(v)
	}
	if v := os.Getenv(EnvMPVPath); v != "" {
		c.mpvPath = v
	}
	if v := os.Getenv(EnvMPVSocket); v != "" {
		c.mpvSocket = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.headless = b
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.corsOrigins = splitList(v)
	}
	if v := os.Getenv(EnvExportRateLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvExportRateLimit, err)
		}
		c.exportRateLimit = n
	}
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: port must be between 1 and 65535", c.port)
	}
	if c.pollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %s: must be positive", c.pollInterval)
	}
	if c.exportTimeout <= 0 {
		return fmt.Errorf("invalid export timeout %s: must be positive", c.exportTimeout)
	}
	if c.player != PlayerMPV && c.player != PlayerSimulated {
		return fmt.Errorf("invalid player %q: must be %q or %q", c.player, PlayerMPV, PlayerSimulated)
	}
	if c.exportRateLimit < 1 {
		return fmt.Errorf("invalid export rate limit %d: must be at least 1", c.exportRateLimit)
	}
	if !strings.HasPrefix(c.backendOrigin, "http://") && !strings.HasPrefix(c.backendOrigin, "https://") {
		return fmt.Errorf("invalid backend origin %q: must start with http:// or https://", c.backendOrigin)
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// BackendOrigin returns the clip service origin used for cut requests and
// download links.
func (c *EnvConfig) BackendOrigin() string {
	return c.backendOrigin
}

func (c *EnvConfig) BackendStub() bool {
	return c.backendStub
}

func (c *EnvConfig) PollInterval() time.Duration {
	return c.pollInterval
}

func (c *EnvConfig) ExportTimeout() time.Duration {
	return c.exportTimeout
}

// Player returns the player kind, "mpv" or "simulated".
func (c *EnvConfig) Player() string {
	return c.player
}

// MPVPath returns the configured mpv binary; empty means look it up on PATH.
func (c *EnvConfig) MPVPath() string {
	return c.mpvPath
}

func (c *EnvConfig) MPVSocket() string {
	if c.mpvSocket != "" {
		return c.mpvSocket
	}
	return filepath.Join(c.dataDir, mpvSocketName)
}

// Headless disables the system tray.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) CORSOrigins() []string {
	return c.corsOrigins
}

// ExportRateLimit returns the allowed export triggers per minute.
func (c *EnvConfig) ExportRateLimit() int {
	return c.exportRateLimit
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
