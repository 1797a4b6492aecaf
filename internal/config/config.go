package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/marketing-connect/mcp-services/internal/validation"
)

const (
	// EnvPrefix is prepended to every setting's environment variable name
	EnvPrefix = "MCP_"

	// DefaultServerName is the MCP server name advertised to clients
	DefaultServerName = "marketing-connect-mcp-services"

	// DefaultServerVersion is the MCP server version advertised to clients
	DefaultServerVersion = "1.0.0"

	// DefaultHost is the address the HTTP server binds to
	DefaultHost = "0.0.0.0"

	// DefaultPort is the port the HTTP server binds to
	DefaultPort = 8000

	// DefaultLogLevel is the log level used when MCP_LOG_LEVEL is unset
	DefaultLogLevel = "INFO"

	// DotEnvFile is read from the working directory on Load, if present
	DotEnvFile = ".env"
)

// Settings is the environment-sourced configuration snapshot for the process.
// Every field has a default so the server starts with no configuration at all.
type Settings struct {
	ServerName    string `env:"SERVER_NAME" envDefault:"marketing-connect-mcp-services"`
	ServerVersion string `env:"SERVER_VERSION" envDefault:"1.0.0"`

	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8000"`

	Debug     bool   `env:"DEBUG" envDefault:"false"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	BaseURL string `env:"BASE_URL"`
	Region  string `env:"REGION"`

	// RateLimit is the number of tool calls allowed per second per tool; 0 disables limiting
	RateLimit int `env:"RATE_LIMIT" envDefault:"0"`
	RateBurst int `env:"RATE_BURST" envDefault:"10"`
}

// Load reads .env (without overriding variables already set) and parses the
// process environment into validated Settings. Variable names are matched
// case-insensitively.
func Load() (*Settings, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return LoadFromEnv(environ)
}

// LoadFromEnv parses exactly the given environment mapping into validated Settings.
// The process environment is not consulted. Names are matched case-insensitively;
// an upper-case name wins over other spellings of the same variable.
func LoadFromEnv(environ map[string]string) (*Settings, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: upperKeys(environ)})
}

func upperKeys(environ map[string]string) map[string]string {
	out := make(map[string]string, len(environ))
	for k, v := range environ {
		upper := strings.ToUpper(k)
		if _, taken := out[upper]; taken && k != upper {
			continue
		}
		out[upper] = v
	}
	return out
}

func parse(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the server cannot start with: an out-of-range
// port, an unknown log format, or rate limits outside their bounds. Fields
// are never rewritten.
func (s *Settings) Validate() error {
	var errs []error

	if err := validation.ValidatePort(s.Port); err != nil {
		errs = append(errs, fmt.Errorf("%sPORT: %w", EnvPrefix, err))
	}
	if _, err := validation.NormalizeLogFormat(s.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("%sLOG_FORMAT: %w", EnvPrefix, err))
	}
	if s.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%sRATE_LIMIT: must not be negative, got %d", EnvPrefix, s.RateLimit))
	}
	if s.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("%sRATE_BURST: must be at least 1, got %d", EnvPrefix, s.RateBurst))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// Warnings reports settings that are accepted but probably unintended, such
// as an unknown log level (treated as INFO) or a version that is not semver.
func (s *Settings) Warnings() []error {
	var warns []error

	if strings.TrimSpace(s.ServerName) == "" {
		warns = append(warns, fmt.Errorf("%sSERVER_NAME: %w", EnvPrefix, validation.ErrInvalidName))
	}
	if err := validation.ValidateSemanticVersion(s.ServerVersion); err != nil {
		warns = append(warns, fmt.Errorf("%sSERVER_VERSION: %w", EnvPrefix, err))
	}
	if _, err := validation.NormalizeLogLevel(s.LogLevel); err != nil {
		warns = append(warns, fmt.Errorf("%sLOG_LEVEL: %w, using %s", EnvPrefix, err, DefaultLogLevel))
	}
	if s.BaseURL != "" {
		if err := validation.ValidateURL(s.BaseURL); err != nil {
			warns = append(warns, fmt.Errorf("%sBASE_URL: %w", EnvPrefix, err))
		}
	}
	return warns
}

// JSONLogs reports whether the log format is json, in any letter case.
func (s *Settings) JSONLogs() bool {
	return strings.EqualFold(strings.TrimSpace(s.LogFormat), "json")
}

// Address returns the host:port the HTTP server listens on.
func (s *Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EffectiveLogLevel returns DEBUG when debug mode is on, otherwise the configured
// level upper-cased, or INFO when the level is unknown.
func (s *Settings) EffectiveLogLevel() string {
	if s.Debug {
		return "DEBUG"
	}
	level, err := validation.NormalizeLogLevel(s.LogLevel)
	if err != nil {
		return DefaultLogLevel
	}
	return level
}
