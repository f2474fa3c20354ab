package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-archive/internal/models"
)

func writeImage(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
}

func TestImageResolverMatchesBaseName(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "episode-2.webp")
	writeImage(t, dir, "other.png")

	resolver := NewImageResolver(dir)

	name, ok := resolver.Resolve("episode-2.mp3")
	require.True(t, ok)
	assert.Equal(t, "episode-2.webp", name)

	// Matching ignores case on both sides.
	name, ok = resolver.Resolve("EPISODE-2.MP3")
	require.True(t, ok)
	assert.Equal(t, "episode-2.webp", name)

	_, ok = resolver.Resolve("episode-3.mp3")
	assert.False(t, ok)
}

func TestImageResolverDeterministicWithSeveralCandidates(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "episode-2.webp")
	writeImage(t, dir, "episode-2.jpg")

	name, ok := NewImageResolver(dir).Resolve("episode-2.mp3")
	require.True(t, ok)
	assert.Equal(t, "episode-2.jpg", name)
}

func TestImageResolverMissingDirectory(t *testing.T) {
	resolver := NewImageResolver(filepath.Join(t.TempDir(), "absent"))
	_, ok := resolver.Resolve("episode-2.mp3")
	assert.False(t, ok)
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"episode-2.mp3", "episode-2"},
		{"archive.tar.gz", "archive.tar"},
		{".hidden", ".hidden"},
		{"plain", "plain"},
		{"  spaced.mp3  ", "spaced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, baseName(tt.in), "input %q", tt.in)
	}
}

func TestBuildFeedItemImage(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, dir, "episode-2.webp")

	assembler := newTestAssembler("http://example.com", dir)
	episodes := []models.Episode{
		{Filename: "episode-2.mp3"},
		{Filename: "episode-9.mp3"},
	}

	output, err := assembler.BuildFeed(episodes)
	require.NoError(t, err)
	body := string(output)

	assert.Contains(t, body, `<itunes:image href="http://example.com/images/episode-2.webp"></itunes:image>`)
	assert.NotContains(t, body, "episode-9.webp")
}
