package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// semanticVersionRegex matches semantic versioning format (simplified)
	// Allows: 1.0.0, 1.0.0-alpha, 1.0.0-alpha.1, 1.0.0+build, 1.0.0-alpha+build
	semanticVersionRegex = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

	// identifierRegex matches lowercase snake_case identifiers such as schema names
	identifierRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

	// ErrInvalidVersion is returned when a version string is invalid
	ErrInvalidVersion = fmt.Errorf("invalid version format")

	// ErrInvalidURL is returned when a URL is invalid
	ErrInvalidURL = fmt.Errorf("invalid URL format")

	// ErrInvalidName is returned when a name is invalid
	ErrInvalidName = fmt.Errorf("invalid name format")

	// ErrInvalidPort is returned when a port is outside 1-65535
	ErrInvalidPort = fmt.Errorf("invalid port")

	// ErrInvalidLogLevel is returned for unknown log levels
	ErrInvalidLogLevel = fmt.Errorf("invalid log level")

	// ErrInvalidLogFormat is returned for unknown log formats
	ErrInvalidLogFormat = fmt.Errorf("invalid log format")
)

// LogLevels lists the accepted log level names, upper-cased.
var LogLevels = []string{"TRACE", "DEBUG", "INFO", "WARNING", "WARN", "ERROR", "CRITICAL"}

// LogFormats lists the accepted log output formats.
var LogFormats = []string{"console", "json"}

// ValidateSemanticVersion checks if a version string follows semantic versioning.
// It accepts both with and without 'v' prefix.
func ValidateSemanticVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: version cannot be empty", ErrInvalidVersion)
	}

	v := strings.TrimPrefix(version, "v")
	if !semanticVersionRegex.MatchString(v) || !semver.IsValid("v"+v) {
		return fmt.Errorf("%w: %q does not follow semantic versioning (expected format: 1.0.0, 1.0.0-alpha, etc.)", ErrInvalidVersion, version)
	}

	return nil
}

// IsSemanticVersion checks if a version string follows semantic versioning.
// This is a lighter check that doesn't return detailed errors.
func IsSemanticVersion(version string) bool {
	return ValidateSemanticVersion(version) == nil
}

// ValidateURL checks that a string is an absolute http or https URL with a host.
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q (expected http or https)", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidURL, urlStr)
	}

	return nil
}

// ValidatePort checks that port is a usable TCP port number.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: %d is outside 1-65535", ErrInvalidPort, port)
	}
	return nil
}

// NormalizeLogLevel upper-cases level and checks it against LogLevels.
func NormalizeLogLevel(level string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(level))
	for _, l := range LogLevels {
		if upper == l {
			return upper, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidLogLevel, level, strings.Join(LogLevels, ", "))
}

// NormalizeLogFormat lower-cases format and checks it against LogFormats.
func NormalizeLogFormat(format string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(format))
	for _, f := range LogFormats {
		if lower == f {
			return lower, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidLogFormat, format, strings.Join(LogFormats, ", "))
}

// ValidateIdentifier checks that name is a lowercase snake_case identifier.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must start with a lowercase letter and contain only lowercase letters, digits, and underscores", ErrInvalidName, name)
	}
	return nil
}
