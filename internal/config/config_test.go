package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "podcasts", settings.MediaDir)
	assert.Equal(t, "http://localhost:8080", settings.BaseURL)
	assert.Equal(t, "127.0.0.1:8080", settings.ListenAddr)
	assert.Equal(t, "images", settings.ImageDir)
	assert.Equal(t, "/images", settings.ImageBasePath)
	assert.Equal(t, "Podcast Archive", settings.Channel.Title)
	assert.False(t, settings.Channel.Explicit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
media_dir: /srv/podcasts
base_url: https://feeds.example.com/
listen_addr: 0.0.0.0:9000
channel:
  title: Night Shift
  explicit: true
  owner_email: host@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/podcasts", settings.MediaDir)
	assert.Equal(t, "https://feeds.example.com/", settings.BaseURL)
	assert.Equal(t, "0.0.0.0:9000", settings.ListenAddr)
	assert.Equal(t, "Night Shift", settings.Channel.Title)
	assert.True(t, settings.Channel.Explicit)
	assert.Equal(t, "host@example.com", settings.Channel.OwnerEmail)
	// Untouched keys keep their defaults.
	assert.Equal(t, "images", settings.ImageDir)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PODCAST_BASE_URL", "https://env.example.com")
	t.Setenv("PODCAST_CHANNEL_TITLE", "From Env")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", settings.BaseURL)
	assert.Equal(t, "From Env", settings.Channel.Title)
}

func TestNormalizedBaseURL(t *testing.T) {
	settings := &Settings{BaseURL: "https://example.com///"}
	assert.Equal(t, "https://example.com", settings.NormalizedBaseURL())
}

func TestNormalizedChannelLinkFallsBackToBaseURL(t *testing.T) {
	settings := &Settings{BaseURL: "https://example.com/"}
	assert.Equal(t, "https://example.com", settings.NormalizedChannelLink())

	settings.Channel.Link = "https://show.example.com/"
	assert.Equal(t, "https://show.example.com", settings.NormalizedChannelLink())
}

func TestEffectiveChannelValues(t *testing.T) {
	settings := &Settings{}
	assert.Equal(t, defaultChannelTitle, settings.EffectiveChannelTitle())
	assert.Equal(t, defaultChannelDescription, settings.EffectiveChannelDescription())
	assert.Equal(t, defaultChannelAuthor, settings.EffectiveChannelAuthor())
	assert.Equal(t, defaultOwnerName, settings.EffectiveOwnerName())
	assert.Equal(t, defaultOwnerEmail, settings.EffectiveOwnerEmail())

	settings.Channel.Title = "  Custom Title  "
	assert.Equal(t, "Custom Title", settings.EffectiveChannelTitle())
}

func TestChannelImageURL(t *testing.T) {
	settings := &Settings{}
	_, ok := settings.ChannelImageURL()
	assert.False(t, ok)

	settings.Channel.ImageURL = " https://example.com/cover.png "
	href, ok := settings.ChannelImageURL()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/cover.png", href)
}

func TestNormalizedImageBasePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/images"},
		{"images", "/images"},
		{"/images", "/images"},
		{"/images/", "/images"},
		{"art//", "/art"},
	}
	for _, tt := range tests {
		settings := &Settings{ImageBasePath: tt.in}
		assert.Equal(t, tt.want, settings.NormalizedImageBasePath(), "input %q", tt.in)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		settings := &Settings{LogLevel: tt.in}
		assert.Equal(t, tt.want, settings.SlogLevel(), "input %q", tt.in)
	}
}
