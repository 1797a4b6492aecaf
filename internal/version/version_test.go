package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionVariables_Defaults(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", GitCommit)
	assert.Equal(t, "unknown", BuildDate)
}

func TestVersionVariables_CanBeSet(t *testing.T) {
	origVersion := Version
	origCommit := GitCommit
	origDate := BuildDate
	t.Cleanup(func() {
		Version = origVersion
		GitCommit = origCommit
		BuildDate = origDate
	})

	// Simulates build-time injection
	Version = "1.2.0"
	GitCommit = "abc123"
	BuildDate = "2026-01-01"

	assert.Equal(t, "1.2.0", Version)
	assert.Equal(t, "abc123", GitCommit)
	assert.Equal(t, "2026-01-01", BuildDate)
}
