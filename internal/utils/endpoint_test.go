package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBaseURL(t *testing.T) {
	got, err := ValidateBaseURL(" https://api.example.com/v1/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", got)

	_, err = ValidateBaseURL("")
	assert.ErrorIs(t, err, ErrConfigEmptyBaseURL)

	for _, bad := range []string{"api.example.com", "ftp://host", "http://", "::"} {
		_, err = ValidateBaseURL(bad)
		assert.ErrorIs(t, err, ErrConfigInvalidBaseURL, bad)
	}
}

func TestHostPort(t *testing.T) {
	addr, err := HostPort("localhost", 6379)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", addr)

	addr, err = HostPort("::1", 6379)
	require.NoError(t, err)
	assert.Equal(t, "[::1]:6379", addr)

	_, err = HostPort("", 6379)
	assert.ErrorIs(t, err, ErrConfigEmptyHostName)
	_, err = HostPort("localhost", 0)
	assert.ErrorIs(t, err, ErrConfigInvalidPort)
	_, err = HostPort("localhost", 70000)
	assert.ErrorIs(t, err, ErrConfigInvalidPort)
}

func TestValidateTimeoutAndPool(t *testing.T) {
	assert.NoError(t, ValidateTimeout(0))
	assert.ErrorIs(t, ValidateTimeout(-time.Second), ErrConfigInvalidTimeout)
	assert.NoError(t, ValidatePoolSize(0))
	assert.ErrorIs(t, ValidatePoolSize(-1), ErrConfigInvalidPoolSize)
}
