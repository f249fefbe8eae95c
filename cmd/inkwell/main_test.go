package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/config"
)

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "editor@example.com", "long enough", false},
		{"bad email", "editor", "long enough", true},
		{"short password", "editor@example.com", "short", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUser(tt.email, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLoggerLevel(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		logger := newLogger(&config.Config{Env: env, LogLevel: slog.LevelWarn})
		assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo), env)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn), env)
	}
}

func TestOpenBackend_Memory(t *testing.T) {
	c := &config.Config{Env: "development", Backend: config.BackendMemory}
	b, err := openBackend(context.Background(), c)
	require.NoError(t, err)
	defer b.close()

	id, err := b.authn.Authenticate(context.Background(), "admin@inkwell.local", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Admin", id.DisplayName)
	assert.NotNil(t, b.twoFactor)
	assert.Nil(t, b.attachToken)
}

func TestOpenBackend_REST(t *testing.T) {
	c := &config.Config{Backend: config.BackendREST, StoreURL: "https://abc.example.co", StoreKey: "public-key"}
	b, err := openBackend(context.Background(), c)
	require.NoError(t, err)

	assert.Nil(t, b.twoFactor, "hosted accounts handle their own second factor")
	assert.NotNil(t, b.attachToken)
}

func TestOpenDatabase_RejectsOtherBackends(t *testing.T) {
	_, err := openDatabase(context.Background(), &config.Config{Backend: config.BackendMemory})
	assert.Error(t, err)
}

func TestOpenImages_Disabled(t *testing.T) {
	images, err := openImages(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, images)
}
